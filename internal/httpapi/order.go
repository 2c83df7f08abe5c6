package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/kaicatering/kai/internal/fulfillment"
)

// orderRequest is the order placement payload. The caterer id is not
// re-checked against the catalog here; the recommendation validator upstream
// owns that invariant.
type orderRequest struct {
	EventDetails map[string]any `json:"eventDetails" validate:"required"`
	UserID       string         `json:"userId"       validate:"required"`
	CatererID    string         `json:"catererId"    validate:"required"`
	PhoneNumber  string         `json:"phoneNumber"  validate:"required,e164"`
}

func (r *orderRequest) eventName() string {
	name, _ := r.EventDetails["event_name"].(string)
	return name
}

// orderResponse reports a placed order. Warning is set when the order was
// persisted but its confirmation message could not be delivered.
type orderResponse struct {
	Order   any    `json:"order"`
	Warning string `json:"warning,omitempty"`
	State   string `json:"state"`
}

func (a *API) orderHandler(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid order request: "+err.Error())
		return
	}
	if strings.TrimSpace(req.eventName()) == "" {
		writeError(w, http.StatusBadRequest, "eventDetails.event_name is required")
		return
	}

	outcome, err := a.pipeline.Place(r.Context(), fulfillment.PlaceRequest{
		UserID:       req.UserID,
		CatererID:    req.CatererID,
		EventDetails: req.EventDetails,
		PhoneNumber:  req.PhoneNumber,
	})

	switch outcome.State {
	case fulfillment.StateNotified:
		writeJSON(w, http.StatusOK, orderResponse{
			Order: outcome.Order,
			State: string(outcome.State),
		})
	case fulfillment.StateNotifyFailed:
		// Partial success: the order is committed and its identifier must
		// reach the caller, who may choose to re-send the confirmation.
		writeJSON(w, http.StatusOK, orderResponse{
			Order:   outcome.Order,
			State:   string(outcome.State),
			Warning: "order confirmed, but the confirmation message could not be sent",
		})
	default:
		a.logger.Error("order placement failed", "state", outcome.State, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to place order",
			"state": string(outcome.State),
		})
	}
}
