package rutas

import (
	"context"
	"strings"

	"github.com/tu-usuario/rastreo-paquetes/internal/application/ports"
	apprutas "github.com/tu-usuario/rastreo-paquetes/internal/application/rutas"
	"github.com/tu-usuario/rastreo-paquetes/internal/domain/geo"
)

// corredores rutas terrestres desde el almacén central hacia cada estado.
// Cada entrada lista los estados intermedios y el destino; el origen se
// antepone al responder.
var corredores = map[string][]string{
	// Sureste por el Golfo
	"Puebla":       {"Puebla"},
	"Veracruz":     {"Puebla", "Veracruz"},
	"Tabasco":      {"Puebla", "Veracruz", "Tabasco"},
	"Campeche":     {"Puebla", "Veracruz", "Tabasco", "Campeche"},
	"Yucatán":      {"Puebla", "Veracruz", "Tabasco", "Campeche", "Yucatán"},
	"Quintana Roo": {"Puebla", "Veracruz", "Tabasco", "Campeche", "Yucatán", "Quintana Roo"},
	// Sur por la sierra
	"Oaxaca":   {"Puebla", "Oaxaca"},
	"Chiapas":  {"Puebla", "Oaxaca", "Chiapas"},
	"Guerrero": {"Morelos", "Guerrero"},
	// Occidente y Pacífico
	"Michoacán": {"México", "Michoacán"},
	"Jalisco":   {"Querétaro", "Guanajuato", "Jalisco"},
	"Colima":    {"Querétaro", "Guanajuato", "Jalisco", "Colima"},
	"Nayarit":   {"Querétaro", "Guanajuato", "Jalisco", "Nayarit"},
	// Noroeste
	"Sinaloa":             {"Querétaro", "Guanajuato", "Zacatecas", "Durango", "Sinaloa"},
	"Sonora":              {"Querétaro", "Guanajuato", "Zacatecas", "Durango", "Sinaloa", "Sonora"},
	"Baja California":     {"Querétaro", "Guanajuato", "Zacatecas", "Durango", "Sinaloa", "Sonora", "Baja California"},
	"Baja California Sur": {"Querétaro", "Guanajuato", "Zacatecas", "Durango", "Sinaloa", "Baja California Sur"},
	// Norte
	"Chihuahua":  {"Querétaro", "Zacatecas", "Durango", "Chihuahua"},
	"Coahuila":   {"Querétaro", "San Luis Potosí", "Coahuila"},
	"Nuevo León": {"Querétaro", "San Luis Potosí", "Nuevo León"},
	"Tamaulipas": {"Querétaro", "San Luis Potosí", "Tamaulipas"},
	// Centro y Bajío
	"Tlaxcala":        {"Puebla", "Tlaxcala"},
	"Hidalgo":         {"Hidalgo"},
	"Morelos":         {"Morelos"},
	"México":          {"México"},
	"Querétaro":       {"Querétaro"},
	"Guanajuato":      {"Querétaro", "Guanajuato"},
	"San Luis Potosí": {"Querétaro", "San Luis Potosí"},
	"Aguascalientes":  {"Querétaro", "Guanajuato", "Aguascalientes"},
	"Zacatecas":       {"Querétaro", "San Luis Potosí", "Zacatecas"},
	"Durango":         {"Querétaro", "Zacatecas", "Durango"},
}

// TablaRutas plan de respaldo determinista basado en corredores fijos.
// No depende de servicios externos y nunca falla.
type TablaRutas struct{}

var _ ports.RouteSuggester = (*TablaRutas)(nil)

// NewTablaRutas crea el proveedor de rutas de respaldo.
func NewTablaRutas() *TablaRutas {
	return &TablaRutas{}
}

// SugerirRuta devuelve la ruta del corredor hacia estadoDestino como lista
// separada por comas, empezando en el almacén central. Para destinos sin
// corredor registrado responde la ruta directa.
func (t *TablaRutas) SugerirRuta(_ context.Context, estadoDestino string) (string, error) {
	destino, _ := geo.Normalizar(estadoDestino)
	if destino == "" || destino == apprutas.EstadoAlmacen {
		return apprutas.EstadoAlmacen, nil
	}
	tramos, ok := corredores[destino]
	if !ok {
		return apprutas.EstadoAlmacen + ", " + destino, nil
	}
	return apprutas.EstadoAlmacen + ", " + strings.Join(tramos, ", "), nil
}
