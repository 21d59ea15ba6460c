// Package ai implementa la sugerencia de rutas llamando a la API REST de
// Google Gemini con la librería estándar (net/http), sin SDK.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tu-usuario/rastreo-paquetes/internal/application/ports"
)

// Verificar en tiempo de compilación que GeminiRouteService implementa RouteSuggester.
var _ ports.RouteSuggester = (*GeminiRouteService)(nil)

const (
	geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s"

	// systemPrompt define el rol del modelo y el formato de salida. Se pide
	// texto plano con los estados separados por comas; el planificador
	// normaliza y valida cada tramo después.
	systemPrompt = `Eres un experto en logística terrestre de México.
Dado un estado de destino, responde ÚNICAMENTE la lista de estados de la República Mexicana
que un camión de paquetería recorre desde Ciudad de México hasta ese destino,
separados por comas y en orden de recorrido, empezando por Ciudad de México y
terminando en el estado de destino.

Reglas:
- Solo nombres oficiales de estados mexicanos, sin municipios ni ciudades.
- Sin numeración, sin explicaciones, sin texto adicional.
- Ejemplo de respuesta: Ciudad de México, Puebla, Veracruz, Tabasco`
)

// GeminiRouteService adaptador que pide a Gemini la ruta de estados hacia un
// destino. El planificador decide qué hacer con respuestas malas o lentas.
type GeminiRouteService struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewGeminiRouteService construye el adaptador. model suele ser
// "gemini-1.5-flash".
func NewGeminiRouteService(apiKey, model string) *GeminiRouteService {
	return &GeminiRouteService{
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: 20 * time.Second, // timeout de red; el caller también pone WithTimeout
		},
	}
}

// ── Estructuras internas para la API de Gemini ────────────────────────────────

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"system_instruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  genConfig       `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type genConfig struct {
	ResponseMIMEType string  `json:"responseMimeType"` // "text/plain": la lista llega como texto
	Temperature      float32 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ── Implementación del puerto ─────────────────────────────────────────────────

// SugerirRuta llama a Gemini con el estado de destino y devuelve la lista de
// estados tal como la escribió el modelo.
func (s *GeminiRouteService) SugerirRuta(ctx context.Context, estadoDestino string) (string, error) {
	if s.apiKey == "" {
		return "", fmt.Errorf("AI: GEMINI_API_KEY no configurado")
	}

	payload := geminiRequest{
		SystemInstruction: &geminiContent{
			Parts: []geminiPart{{Text: systemPrompt}},
		},
		Contents: []geminiContent{
			{
				Role:  "user",
				Parts: []geminiPart{{Text: "Estado de destino: " + estadoDestino}},
			},
		},
		GenerationConfig: genConfig{
			ResponseMIMEType: "text/plain",
			Temperature:      0.2, // baja temperatura para rutas más deterministas
			MaxOutputTokens:  128,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("AI: serializar request: %w", err)
	}

	url := fmt.Sprintf(geminiBaseURL, s.model, s.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("AI: crear HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("AI: timeout o cancelación: %w", ctx.Err())
		}
		return "", fmt.Errorf("AI: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return "", fmt.Errorf("AI: leer respuesta: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		// Intentar extraer el mensaje de error de Gemini
		var errResp geminiResponse
		if jsonErr := json.Unmarshal(rawBody, &errResp); jsonErr == nil && errResp.Error != nil {
			return "", fmt.Errorf("AI: Gemini error %d: %s", errResp.Error.Code, errResp.Error.Message)
		}
		return "", fmt.Errorf("AI: Gemini HTTP %d", resp.StatusCode)
	}

	var gemResp geminiResponse
	if err := json.Unmarshal(rawBody, &gemResp); err != nil {
		return "", fmt.Errorf("AI: deserializar respuesta Gemini: %w", err)
	}

	if len(gemResp.Candidates) == 0 || len(gemResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("AI: Gemini devolvió respuesta vacía")
	}

	ruta := strings.TrimSpace(gemResp.Candidates[0].Content.Parts[0].Text)
	if ruta == "" {
		return "", fmt.Errorf("AI: Gemini devolvió texto vacío")
	}
	return ruta, nil
}
