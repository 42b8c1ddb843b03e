package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSVG(t *testing.T) {
	svc := NewQRService(8)

	payload, err := svc.RenderSVG("https://go.example.com/c/amz-sept-1")
	require.NoError(t, err)
	require.NotEmpty(t, payload)

	svg := string(payload)
	assert.Contains(t, svg, "<svg")
	assert.Contains(t, svg, "</svg>")
	assert.Contains(t, svg, "rect")
}

func TestRenderSVGDefaultsBlockSize(t *testing.T) {
	svc := NewQRService(0)

	payload, err := svc.RenderSVG("https://go.example.com/c/x")
	require.NoError(t, err)
	assert.NotEmpty(t, payload)
}

func TestRenderSVGDeterministic(t *testing.T) {
	svc := NewQRService(8)

	first, err := svc.RenderSVG("https://go.example.com/c/amz-sept-1")
	require.NoError(t, err)
	second, err := svc.RenderSVG("https://go.example.com/c/amz-sept-1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRenderSVGEmptyContent(t *testing.T) {
	svc := NewQRService(8)

	_, err := svc.RenderSVG("")
	assert.Error(t, err)
}
