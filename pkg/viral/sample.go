package viral

import (
	"embed"
	"fmt"
	"sync"

	"viralflow-api/pkg/decode"
)

//go:embed samples/*.json
var sampleFS embed.FS

// Samples is the canned data shown in sample mode.
type Samples struct {
	Trend   *TrendReport
	Visuals *VisualBoard
	Scripts *ScriptBook
}

var (
	samplesOnce sync.Once
	samples     Samples
	samplesErr  error
)

// LoadSamples decodes the embedded sample replies through the same path as
// live agent output. The result is shared; callers must not modify it.
func LoadSamples() (Samples, error) {
	samplesOnce.Do(func() {
		var trend, visuals, scripts decode.Record
		if trend, samplesErr = sampleRecord("trend"); samplesErr != nil {
			return
		}
		if visuals, samplesErr = sampleRecord("visuals"); samplesErr != nil {
			return
		}
		if scripts, samplesErr = sampleRecord("scripts"); samplesErr != nil {
			return
		}
		samples = Samples{
			Trend:   NewTrendReport(trend),
			Visuals: NewVisualBoard(visuals, nil),
			Scripts: NewScriptBook(scripts),
		}
	})
	return samples, samplesErr
}

// MustLoadSamples panics when the embedded samples are broken.
func MustLoadSamples() Samples {
	s, err := LoadSamples()
	if err != nil {
		panic(err)
	}
	return s
}

func sampleRecord(name string) (decode.Record, error) {
	data, err := sampleFS.ReadFile("samples/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("viral: read sample %s: %w", name, err)
	}
	out := decode.Decode(data)
	if !out.OK() {
		return nil, fmt.Errorf("viral: sample %s: %w", name, out.Err())
	}
	return out.Record(), nil
}
