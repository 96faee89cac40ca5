package artifact

import "github.com/plense/plensor-gateway/internal/sensor"

// WriteAudio persists an audio result under audio/raw and returns the
// filename it wrote.
func (r Root) WriteAudio(meta AudioMeta, res sensor.AudioResult) (string, error) {
	name := AudioFilename(meta)
	path := r.path("audio/raw", name)
	if err := writeAtomic(path, encodePCM(res.RateHz, res.Samples)); err != nil {
		return "", err
	}
	return name, nil
}
