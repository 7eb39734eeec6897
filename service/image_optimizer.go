package service

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png"
	"os"
	"sync"

	"github.com/disintegration/imaging"

	"quick-quote/logger"
)

const (
	// logo settings (max dimension)
	maxSizeLogo  = 300
	qualityLogo  = 85
	logoMimeType = "image/jpeg"
)

// OptimizeLogo converts a PNG or JPEG to JPEG no larger than maxSizeLogo on either side
func OptimizeLogo(imageData []byte) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	var resizedImg image.Image = img
	if width > maxSizeLogo || height > maxSizeLogo {
		var newWidth, newHeight int
		if width > height {
			newWidth = maxSizeLogo
			newHeight = int(float64(height) * float64(maxSizeLogo) / float64(width))
		} else {
			newHeight = maxSizeLogo
			newWidth = int(float64(width) * float64(maxSizeLogo) / float64(height))
		}

		logger.GetLogger().Debugw("🔄 OptimizeLogo: resizing", "format", format,
			"from", fmt.Sprintf("%dx%d", width, height), "to", fmt.Sprintf("%dx%d", newWidth, newHeight))
		resizedImg = imaging.Resize(img, newWidth, newHeight, imaging.Lanczos)
	}

	// JPEG has no alpha, flatten onto white
	flat := imaging.New(resizedImg.Bounds().Dx(), resizedImg.Bounds().Dy(), color.White)
	flat = imaging.Overlay(flat, resizedImg, image.Pt(0, 0), 1.0)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: qualityLogo}); err != nil {
		return nil, fmt.Errorf("failed to encode to JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// LogoSource loads the business logo once and keeps the optimized bytes in memory
type LogoSource struct {
	path string

	once sync.Once
	data []byte
	err  error
}

// NewLogoSource creates a logo source for path. An empty path means no logo.
func NewLogoSource(path string) *LogoSource {
	return &LogoSource{path: path}
}

// NewLogoSourceFromBytes creates a logo source from image bytes already in memory
func NewLogoSourceFromBytes(imageData []byte) *LogoSource {
	s := &LogoSource{}
	s.once.Do(func() {
		s.data, s.err = OptimizeLogo(imageData)
	})
	return s
}

// Bytes returns the optimized JPEG logo, or nil when none is configured
func (s *LogoSource) Bytes() ([]byte, error) {
	if s == nil {
		return nil, nil
	}
	s.once.Do(func() {
		if s.path == "" {
			return
		}
		raw, err := os.ReadFile(s.path)
		if err != nil {
			s.err = fmt.Errorf("failed to read logo: %w", err)
			return
		}
		s.data, s.err = OptimizeLogo(raw)
		if s.err == nil {
			logger.GetLogger().Infow("✓ Logo cached", "path", s.path, "bytes", len(s.data))
		}
	})
	return s.data, s.err
}

// DataURL returns the logo as an inline image URL for HTML rendering
func (s *LogoSource) DataURL() (string, error) {
	data, err := s.Bytes()
	if err != nil || data == nil {
		return "", err
	}
	return "data:" + logoMimeType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
