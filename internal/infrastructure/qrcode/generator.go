// Package qrcode genera la imagen QR que viaja en la etiqueta del paquete.
package qrcode

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/boombuler/barcode"
	bqr "github.com/boombuler/barcode/qr"

	"github.com/tu-usuario/rastreo-paquetes/internal/application/ports"
)

var _ ports.QRGenerator = (*Generator)(nil)

// tamanoPNG lado en píxeles de la imagen generada.
const tamanoPNG = 256

// Generator produce imágenes QR en PNG con boombuler/barcode.
type Generator struct{}

// NewGenerator construye el generador de códigos QR.
func NewGenerator() *Generator { return &Generator{} }

// GenerarPNG codifica el contenido en un QR de 256x256 y lo devuelve como PNG.
func (g *Generator) GenerarPNG(contenido string) ([]byte, error) {
	if contenido == "" {
		return nil, fmt.Errorf("qr: contenido vacío")
	}
	code, err := bqr.Encode(contenido, bqr.M, bqr.Auto)
	if err != nil {
		return nil, fmt.Errorf("qr: codificar: %w", err)
	}
	code, err = barcode.Scale(code, tamanoPNG, tamanoPNG)
	if err != nil {
		return nil, fmt.Errorf("qr: escalar: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, code); err != nil {
		return nil, fmt.Errorf("qr: codificar PNG: %w", err)
	}
	return buf.Bytes(), nil
}
