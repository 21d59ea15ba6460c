package ports

import "context"

// RouteSuggester define el puerto de salida para la sugerencia de rutas entre
// entidades federativas. Recibe el estado destino y devuelve texto sin
// estructura garantizada: una lista de estados separados por comas o
// punto y coma, posiblemente con viñetas o numeración al inicio.
//
// Hay dos implementaciones de primera clase: el oráculo externo (Gemini) y la
// tabla determinista de corredores (respaldo). El planificador elige la
// segunda automáticamente cuando la primera falla o agota su timeout; el
// contexto debe llevar ese timeout.
type RouteSuggester interface {
	SugerirRuta(ctx context.Context, estadoDestino string) (string, error)
}
