package plan

import (
	"fmt"
	"os"
	"path/filepath"
)

// Sentinel filenames watched in the metadata directory, per spec §4.5/§6.
const (
	SentinelInterrupt   = "message_interrupt.json"
	SentinelNewSettings = "new_measure_settings_flag"
	SentinelNewMetadata = "new_metadata_flag"
)

// Sentinels reports which of the three watched files are currently
// present in dir.
type Sentinels struct {
	Interrupt   bool
	NewSettings bool
	NewMetadata bool
}

// Scan checks dir for the three sentinel files without consuming them.
func Scan(dir string) (Sentinels, error) {
	var s Sentinels
	var err error
	if s.Interrupt, err = exists(filepath.Join(dir, SentinelInterrupt)); err != nil {
		return s, err
	}
	if s.NewSettings, err = exists(filepath.Join(dir, SentinelNewSettings)); err != nil {
		return s, err
	}
	if s.NewMetadata, err = exists(filepath.Join(dir, SentinelNewMetadata)); err != nil {
		return s, err
	}
	return s, nil
}

func exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// ConsumeInterrupts reads and removes message_interrupt.json if present,
// returning its decoded contents. It reports no entries and no error if
// the file is absent.
func ConsumeInterrupts(dir string) ([]InterruptMessage, error) {
	path := filepath.Join(dir, SentinelInterrupt)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("plan: read %s: %w", path, err)
	}
	msgs, err := DecodeInterrupts(data)
	if err != nil {
		return nil, err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("plan: remove %s: %w", path, err)
	}
	return msgs, nil
}

// ConsumeFlag removes a marker sentinel (new_measure_settings_flag or
// new_metadata_flag) if present, reporting whether it had been set.
func ConsumeFlag(dir, name string) (bool, error) {
	path := filepath.Join(dir, name)
	present, err := exists(path)
	if err != nil || !present {
		return present, err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return true, fmt.Errorf("plan: remove %s: %w", path, err)
	}
	return true, nil
}
