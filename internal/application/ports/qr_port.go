package ports

// QRGenerator define el puerto para codificar contenido como imagen QR en PNG.
type QRGenerator interface {
	GenerarPNG(contenido string) ([]byte, error)
}
