package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"SymptomCheck_V0.1/internal/symptom"
	"SymptomCheck_V0.1/internal/utility"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	errSymptomsRequired = "Symptom text is required."
	errInvalidRequest   = "Invalid request format"
)

// SymptomRequest is the payload expected from the client.
type SymptomRequest struct {
	Symptoms string `json:"symptoms"`
}

// SymptomResponse is the JSON contract returned to the client.
type SymptomResponse struct {
	ProbableConditions   []string `json:"probable_conditions"`
	RecommendedNextSteps []string `json:"recommended_next_steps"`
	SafetyDisclaimer     string   `json:"safety_disclaimer"`
	Reasoning            string   `json:"reasoning"`
}

func newSymptomResponse(r symptom.SuggestionResult) SymptomResponse {
	return SymptomResponse{
		ProbableConditions:   r.ProbableConditions,
		RecommendedNextSteps: r.RecommendedNextSteps,
		SafetyDisclaimer:     r.SafetyDisclaimer,
		Reasoning:            r.Reasoning,
	}
}

// checkSymptomsHandler accepts symptom text and queries the LLM.
func (s *Server) checkSymptomsHandler(c echo.Context) error {
	logger := utility.GetLogger(c)

	var req SymptomRequest
	if err := c.Bind(&req); err != nil {
		logger.Warn().Err(err).Msg("Failed to bind request body")
		return c.JSON(http.StatusBadRequest, map[string]string{"error": errInvalidRequest})
	}

	if strings.TrimSpace(req.Symptoms) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": errSymptomsRequired})
	}

	outcome := s.adapter.Suggest(c.Request().Context(), req.Symptoms)
	logger.Info().Str("outcome", outcome.Status.String()).Msg("Symptom check finished")

	return c.JSON(http.StatusOK, newSymptomResponse(outcome.Payload()))
}

// symptomSocketHandler serves the same contract over a WebSocket: every
// {"symptoms": ...} text frame gets exactly one reply frame.
func (s *Server) symptomSocketHandler(c echo.Context) error {
	ctx := c.Request().Context()
	logger := utility.GetLogger(c)

	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	connID := uuid.New().String()
	s.hub.Register(connID, ws)
	defer s.hub.Unregister(connID)

	for {
		msgType, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn().Err(err).Str("conn_id", connID).Msg("WebSocket closed unexpectedly")
			}
			return nil
		}
		if msgType != websocket.TextMessage {
			continue
		}

		var reply any
		var req SymptomRequest
		switch {
		case json.Unmarshal(data, &req) != nil:
			reply = map[string]string{"error": errInvalidRequest}
		case strings.TrimSpace(req.Symptoms) == "":
			reply = map[string]string{"error": errSymptomsRequired}
		default:
			reply = newSymptomResponse(s.adapter.Generate(ctx, req.Symptoms))
		}

		if err := ws.WriteJSON(reply); err != nil {
			logger.Warn().Err(err).Str("conn_id", connID).Msg("Failed to write WebSocket reply")
			return nil
		}
	}
}
