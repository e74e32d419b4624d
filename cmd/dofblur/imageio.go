package main

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/disintegration/imaging"
	"github.com/ftrvxmtrx/tga"
	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/dof"
	"github.com/gogpu/dof/postprocess"
)

// loadImage decodes an image file. PNG, JPEG, GIF, TIFF, BMP and TGA are
// supported.
func loadImage(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return img, nil
}

// loadDepth decodes a depth map and resamples it to w x h. Brighter is
// farther.
func loadDepth(path string, w, h int) (*postprocess.Texture, error) {
	img, err := loadImage(path)
	if err != nil {
		return nil, err
	}

	if b := img.Bounds(); b.Dx() != w || b.Dy() != h {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		xdraw.BiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
		img = dst
	}

	return dof.NewDepthTexture(postprocess.NewTextureFromImage(img)), nil
}

// outputFormat returns the format to write path in: format when set,
// otherwise the one implied by the file extension.
func outputFormat(path, format string) (string, error) {
	if format != "" {
		return format, nil
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		return "png", nil
	case ".jpg", ".jpeg":
		return "jpeg", nil
	case ".webp":
		return "webp", nil
	case ".tga":
		return "tga", nil
	default:
		return "", fmt.Errorf("unsupported output extension %q", ext)
	}
}

// saveImage writes img to path.
func saveImage(img image.Image, path, format string, jpegQuality int) (err error) {
	format, err = outputFormat(path, format)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close output: %w", cerr)
		}
	}()

	switch format {
	case "webp":
		err = nativewebp.Encode(f, img, nil)
	case "tga":
		err = tga.Encode(f, img)
	case "jpeg":
		err = imaging.Encode(f, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality))
	default:
		err = imaging.Encode(f, img, imaging.PNG)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", format, err)
	}
	return nil
}
