package httpapi

import (
	"encoding/json"
	"net/http"

	"jobboard-engine/internal/secrets"
)

type SecretsHandler struct{}

type setProviderKeyReq struct {
	Key string `json:"key"`
}

// SetProviderKey stores the external provider's API key in the OS keychain.
// The next sync batch picks it up; nothing is written to the config file.
func (h SecretsHandler) SetProviderKey(w http.ResponseWriter, r *http.Request) {
	var req setProviderKeyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	if err := secrets.SetProviderAPIKey(req.Key); err != nil {
		WriteError(w, r, http.StatusBadRequest, "store_failed", "failed to store key: "+err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
