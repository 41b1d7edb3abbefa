package codec

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"image"
	"io"

	"github.com/disintegration/imaging"

	"github.com/aliskhannn/photowatermark/internal/model"
)

// Convert applies the color-mode rules of an export format.
// JPEG has no alpha: the channel is dropped (pixels keep their color values and
// become opaque). PNG always carries alpha: RGB images are promoted to RGBA.
func Convert(img Image, format model.Format) Image {
	switch format {
	case model.JPEG:
		if img.mode == ModeRGB {
			return img
		}
		pix := imaging.Clone(img.pix)
		setOpaque(pix)
		return Image{pix: pix, mode: ModeRGB, path: img.path}
	case model.PNG:
		return Image{pix: img.pix, mode: ModeRGBA, path: img.path}
	default:
		return img
	}
}

// Encode converts img for format and returns the encoded file bytes.
// Quality applies to JPEG and is clamped to [0,100].
func Encode(img Image, format model.Format, quality int) ([]byte, error) {
	quality = model.ClampInt(quality, 0, 100)
	converted := Convert(img, format)

	buf := new(bytes.Buffer)
	var err error
	switch format {
	case model.JPEG:
		err = imaging.Encode(buf, converted.pix, imaging.JPEG, imaging.JPEGQuality(quality))
	case model.PNG:
		err = encodePNG(buf, converted.pix)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncodeFailure, err)
	}

	return buf.Bytes(), nil
}

// encodePNG writes pix with an alpha channel. image/png stores fully opaque
// images as plain truecolor, so those go through writeRGBAPNG instead.
func encodePNG(w io.Writer, pix *image.NRGBA) error {
	if !pix.Opaque() {
		return imaging.Encode(w, pix, imaging.PNG)
	}
	return writeRGBAPNG(w, pix)
}

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// writeRGBAPNG emits an 8-bit truecolor-with-alpha PNG, unfiltered rows.
func writeRGBAPNG(w io.Writer, pix *image.NRGBA) error {
	b := pix.Bounds()
	if b.Empty() {
		return fmt.Errorf("empty image %v", b)
	}

	var ihdr [13]byte
	binary.BigEndian.PutUint32(ihdr[0:4], uint32(b.Dx()))
	binary.BigEndian.PutUint32(ihdr[4:8], uint32(b.Dy()))
	ihdr[8] = 8 // bit depth
	ihdr[9] = 6 // color type RGBA

	var idat bytes.Buffer
	zw, err := zlib.NewWriterLevel(&idat, zlib.DefaultCompression)
	if err != nil {
		return err
	}
	row := make([]byte, 1+b.Dx()*4)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := pix.PixOffset(b.Min.X, y)
		copy(row[1:], pix.Pix[i:i+b.Dx()*4])
		if _, err := zw.Write(row); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return err
	}

	if _, err := w.Write(pngSignature); err != nil {
		return err
	}
	if err := writeChunk(w, "IHDR", ihdr[:]); err != nil {
		return err
	}
	if err := writeChunk(w, "IDAT", idat.Bytes()); err != nil {
		return err
	}
	return writeChunk(w, "IEND", nil)
}

func writeChunk(w io.Writer, name string, data []byte) error {
	var header [8]byte
	binary.BigEndian.PutUint32(header[:4], uint32(len(data)))
	copy(header[4:], name)

	crc := crc32.NewIEEE()
	crc.Write(header[4:])
	crc.Write(data)
	var footer [4]byte
	binary.BigEndian.PutUint32(footer[:], crc.Sum32())

	for _, p := range [][]byte{header[:], data, footer[:]} {
		if _, err := w.Write(p); err != nil {
			return err
		}
	}
	return nil
}
