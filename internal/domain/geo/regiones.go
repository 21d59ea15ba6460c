// Package geo contiene el catálogo inmutable de entidades federativas de México
// y el normalizador que mapea texto libre (direcciones completas o nombres
// sueltos, con o sin acentos) a un nombre canónico del catálogo.
//
// El catálogo se carga una sola vez a nivel de paquete y es de solo lectura,
// por lo que es seguro para lecturas concurrentes sin sincronización.
package geo

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Regiones es el catálogo canónico de las 32 entidades federativas.
var Regiones = []string{
	"Aguascalientes", "Baja California", "Baja California Sur", "Campeche",
	"Chiapas", "Chihuahua", "Ciudad de México", "Coahuila", "Colima",
	"Durango", "Guanajuato", "Guerrero", "Hidalgo", "Jalisco", "México",
	"Michoacán", "Morelos", "Nayarit", "Nuevo León", "Oaxaca", "Puebla",
	"Querétaro", "Quintana Roo", "San Luis Potosí", "Sinaloa", "Sonora",
	"Tabasco", "Tamaulipas", "Tlaxcala", "Veracruz", "Yucatán", "Zacatecas",
}

// Alias históricos y abreviaturas que no aparecen en el catálogo.
var aliases = map[string]string{
	"cdmx":             "Ciudad de México",
	"distrito federal": "Ciudad de México",
	"df":               "Ciudad de México",
	"edomex":           "México",
	"estado de mexico": "México",
}

// regionesFold precalcula la forma plegada (minúsculas, sin acentos) de cada
// entrada canónica, en el mismo orden que Regiones.
var regionesFold = func() []string {
	out := make([]string, len(Regiones))
	for i, r := range Regiones {
		out[i] = fold(r)
	}
	return out
}()

var quitarAcentos = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// fold pliega texto a minúsculas sin marcas diacríticas ("Yucatán" -> "yucatan").
func fold(s string) string {
	plano, _, err := transform.String(quitarAcentos, s)
	if err != nil {
		plano = s
	}
	return strings.ToLower(strings.TrimSpace(plano))
}

// Normalizar intenta mapear texto libre a una entrada canónica del catálogo.
// Orden de resolución: (a) coincidencia exacta insensible a mayúsculas y
// acentos; (b) contención de subcadena en ambas direcciones, en el orden del
// catálogo; (c) alias especiales (CDMX, Distrito Federal, EdoMex);
// (d) sin coincidencia: devuelve el texto recortado tal cual y false.
//
// Es idempotente: Normalizar(Normalizar(x)) == Normalizar(x).
func Normalizar(texto string) (string, bool) {
	recortado := strings.TrimSpace(texto)
	if recortado == "" {
		return "", false
	}
	plegado := fold(recortado)

	// (a) exacta: corre sobre todo el catálogo antes que cualquier contención,
	// de modo que "Baja California Sur" nunca se resuelva a "Baja California".
	for i, rf := range regionesFold {
		if rf == plegado {
			return Regiones[i], true
		}
	}

	// (b) contención: una dirección completa contiene el nombre del estado, o
	// el texto es un fragmento del nombre canónico. Gana la coincidencia más
	// larga, de modo que "Ciudad de México, CDMX, México" resuelva a
	// Ciudad de México y no a México.
	mejor := -1
	for i, rf := range regionesFold {
		if strings.Contains(plegado, rf) || strings.Contains(rf, plegado) {
			if mejor < 0 || len(rf) > len(regionesFold[mejor]) {
				mejor = i
			}
		}
	}
	if mejor >= 0 {
		return Regiones[mejor], true
	}

	// (c) alias especiales. Los de dos letras ("df") solo por igualdad exacta
	// para no disparar con subcadenas accidentales.
	for alias, canonico := range aliases {
		if plegado == alias || (len(alias) >= 4 && strings.Contains(plegado, alias)) {
			return canonico, true
		}
	}

	// (d) texto sin mapear: se devuelve recortado, sin cambios.
	return recortado, false
}

// EsCanonica indica si nombre es exactamente una entrada del catálogo.
func EsCanonica(nombre string) bool {
	for _, r := range Regiones {
		if r == nombre {
			return true
		}
	}
	return false
}
