package media

import (
	"encoding/json"
	"os/exec"
	"strconv"
)

type probeResult struct {
	Format  probeFormat   `json:"format"`
	Streams []probeStream `json:"streams"`
}

type probeFormat struct {
	Duration string `json:"duration"`
	Size     string `json:"size"`
	BitRate  string `json:"bit_rate"`
}

type probeStream struct {
	CodecName  string `json:"codec_name"`
	CodecType  string `json:"codec_type"` // audio, video, subtitle
	SampleRate string `json:"sample_rate,omitempty"`
	Channels   int    `json:"channels,omitempty"`
}

// AudioInfo summarizes an uploaded audio file.
type AudioInfo struct {
	Duration   float64 `json:"duration"` // seconds
	Codec      string  `json:"codec"`
	SampleRate int     `json:"sample_rate"`
	Channels   int     `json:"channels"`
}

// Probe runs ffprobe on the file and returns its audio properties.
func Probe(filePath string) (*AudioInfo, error) {
	cmd := exec.Command("ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		filePath,
	)

	output, err := cmd.Output()
	if err != nil {
		return nil, err
	}

	var result probeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return nil, err
	}

	info := &AudioInfo{}
	info.Duration, _ = strconv.ParseFloat(result.Format.Duration, 64)

	for _, s := range result.Streams {
		if s.CodecType != "audio" {
			continue
		}
		info.Codec = s.CodecName
		info.Channels = s.Channels
		info.SampleRate, _ = strconv.Atoi(s.SampleRate)
		break
	}

	return info, nil
}
