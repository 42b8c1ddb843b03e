package services

import (
	"bytes"
	"fmt"

	goqrsvg "github.com/aaronarduino/goqrsvg"
	svg "github.com/ajstarks/svgo"
	"github.com/boombuler/barcode/qr"
)

// QRService renders scan URLs as vector QR images
type QRService interface {
	RenderSVG(content string) ([]byte, error)
}

// QRServiceImpl renders QR codes as SVG so they scale losslessly on print
// material
type QRServiceImpl struct {
	blockSize int
}

func NewQRService(blockSize int) QRService {
	if blockSize <= 0 {
		blockSize = 8
	}
	return &QRServiceImpl{blockSize: blockSize}
}

func (s *QRServiceImpl) RenderSVG(content string) ([]byte, error) {
	if content == "" {
		return nil, fmt.Errorf("qr content must not be empty")
	}

	code, err := qr.Encode(content, qr.M, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr content: %w", err)
	}

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	qs := goqrsvg.NewQrSVG(code, s.blockSize)
	qs.StartQrSVG(canvas)
	if err := qs.WriteQrSVG(canvas); err != nil {
		return nil, fmt.Errorf("failed to write qr svg: %w", err)
	}
	canvas.End()

	return buf.Bytes(), nil
}
