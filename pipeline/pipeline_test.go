package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlurScheduleDefault(t *testing.T) {
	passes := BlurSchedule(DefaultBlurPasses)
	require.Len(t, passes, 5)

	assert.Equal(t, []BlurPass{
		{Horizontal: true, Source: BrightPass, Target: 1},
		{Horizontal: false, Source: 1, Target: 0},
		{Horizontal: true, Source: 0, Target: 1},
		{Horizontal: false, Source: 1, Target: 0},
		{Horizontal: true, Source: 0, Target: 1},
	}, passes)
	assert.Equal(t, 1, FinalTarget(passes))
}

func TestBlurScheduleInvariants(t *testing.T) {
	for n := 1; n <= 10; n++ {
		passes := BlurSchedule(n)
		require.Len(t, passes, n)
		assert.True(t, passes[0].Horizontal)
		assert.Equal(t, BrightPass, passes[0].Source)
		for i := 1; i < n; i++ {
			assert.NotEqual(t, passes[i-1].Horizontal, passes[i].Horizontal)
			assert.Equal(t, passes[i-1].Target, passes[i].Source)
			assert.NotEqual(t, passes[i].Source, passes[i].Target)
		}
	}
}

func TestBlurScheduleEmpty(t *testing.T) {
	assert.Empty(t, BlurSchedule(0))
	assert.Equal(t, BrightPass, FinalTarget(nil))
}

func TestGaussianWeightsNormalised(t *testing.T) {
	sum := GaussianWeights[0]
	for _, w := range GaussianWeights[1:] {
		sum += 2 * w
	}
	assert.InDelta(t, 1.0, sum, 1e-3)
}

func TestStages(t *testing.T) {
	assert.Equal(t, []Stage{
		StageClear, StageLightUniforms, StageOpaque, StageBillboards,
		StageSkybox, StageBlur, StageComposite, StagePresent,
	}, Stages(false))

	withOverlay := Stages(true)
	require.Len(t, withOverlay, 9)
	assert.Equal(t, StageOverlay, withOverlay[7])
	assert.Equal(t, StagePresent, withOverlay[8])

	assert.Equal(t, "skybox", StageSkybox.String())
	assert.Equal(t, "stage(42)", Stage(42).String())
}

func TestTonemap(t *testing.T) {
	c := Composite{Bloom: false, Exposure: 1}
	assert.Equal(t, float32(0), c.Tonemap(0, 5))
	// Bloom off ignores the blurred input.
	assert.Equal(t, c.Tonemap(1, 0), c.Tonemap(1, 5))

	c.Bloom = true
	assert.Greater(t, c.Tonemap(1, 0.5), c.Tonemap(1, 0))

	// Very bright input saturates below 1.
	assert.InDelta(t, 1, c.Tonemap(100, 0), 1e-4)

	// Zero exposure maps everything to black.
	c.Exposure = 0
	assert.Equal(t, float32(0), c.Tonemap(10, 10))
}

func TestLuminance(t *testing.T) {
	assert.InDelta(t, 1, Luminance(1, 1, 1), 1e-6)
	assert.Less(t, Luminance(0.9, 0.9, 0.9), float32(BrightLuminance))
	assert.Greater(t, Luminance(0, 1.5, 0), float32(BrightLuminance))
}
