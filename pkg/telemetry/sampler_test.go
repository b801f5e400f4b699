package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRatio(t *testing.T) {
	assert.Equal(t, 1.0, parseRatio(""))
	assert.Equal(t, 0.25, parseRatio("0.25"))
	assert.Equal(t, 1.0, parseRatio("not-a-number"))
	assert.Equal(t, 0.0, parseRatio("-3"))
	assert.Equal(t, 1.0, parseRatio("17"))
}

func TestCreateSampler(t *testing.T) {
	cases := []string{
		"", "always_on", "always_off", "traceidratio",
		"parentbased_always_on", "parentbased_always_off",
		"parentbased_traceidratio", "unknown-sampler",
	}
	for _, name := range cases {
		s := createSampler(&Config{Sampler: name, SamplerArg: "0.5"})
		assert.NotNil(t, s, "sampler %q", name)
	}
}
