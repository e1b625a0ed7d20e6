package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/heroiclabs/nakama-common/runtime"

	"github.com/prcass/outrank-v5-sub000/internal/app"
	"github.com/prcass/outrank-v5-sub000/internal/config"
)

// rpcChannelToken issues a signed realtime-channel token for a match.
// Payload: {"action": "join" | "spectate", "match_id": "..."}
func rpcChannelToken(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userId, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userId == "" {
		return "", runtime.NewError("Authentication required", 16) // UNAUTHENTICATED
	}

	var req struct {
		Action  string `json:"action"`
		MatchID string `json:"match_id"`
	}
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("Invalid payload", 3) // INVALID_ARGUMENT
	}
	if req.Action == "" {
		req.Action = app.ChannelTokenActionJoin
	}

	// Env credentials win over the config file so deployments can rotate the
	// secret without shipping new data files.
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	secret := env["channel_token_secret"]
	issuer := env["channel_token_issuer"]
	realm := env["channel_token_realm"]
	if gc := config.GetGameConfig(); gc != nil {
		if secret == "" {
			secret = gc.ChannelTokenSecret
		}
		if issuer == "" {
			issuer = gc.ChannelTokenIssuer
		}
		if realm == "" {
			realm = gc.ChannelTokenRealm
		}
	}
	if secret == "" || issuer == "" || realm == "" {
		secret = "test-secret"
		issuer = "test-issuer"
		realm = "test-realm"
		logger.Warn("Channel token credentials missing, using test defaults.")
	}

	svc := app.NewChannelTokenService(secret, issuer, realm)
	token, err := svc.GenerateToken(userId, req.Action, req.MatchID)
	if err != nil {
		logger.Warn("Failed to generate channel token for %s: %v", userId, err)
		return "", runtime.NewError(err.Error(), 3)
	}

	res := map[string]string{"token": token}
	resBytes, _ := json.Marshal(res)
	return string(resBytes), nil
}
