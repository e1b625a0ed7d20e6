package app

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/form3tech-oss/jwt-go"
)

// ChannelTokenService signs short-lived tokens that let a client attach to
// a match's realtime channel, either as a seated player or a spectator.
type ChannelTokenService struct {
	secret string
	issuer string
	realm  string
}

const (
	ChannelTokenActionJoin     = "join"
	ChannelTokenActionSpectate = "spectate"

	channelTokenTTL = time.Hour
)

func NewChannelTokenService(secret, issuer, realm string) *ChannelTokenService {
	return &ChannelTokenService{
		secret: secret,
		issuer: issuer,
		realm:  realm,
	}
}

// GenerateToken issues an HS256 token authorizing user to perform action on
// the channel of the given match.
func (s *ChannelTokenService) GenerateToken(user, action, matchID string) (string, error) {
	if s == nil {
		return "", fmt.Errorf("channel token service is nil")
	}
	if user == "" {
		return "", fmt.Errorf("user is required")
	}
	if s.secret == "" || s.issuer == "" || s.realm == "" {
		return "", fmt.Errorf("channel token config is incomplete")
	}
	if matchID == "" {
		return "", fmt.Errorf("match id is required")
	}

	switch action {
	case ChannelTokenActionJoin, ChannelTokenActionSpectate:
	default:
		return "", fmt.Errorf("unsupported channel action: %s", action)
	}

	claims := jwt.MapClaims{
		"iss": s.issuer,
		"sub": user,
		"exp": time.Now().Add(channelTokenTTL).Unix(),
		"act": action,
		"chn": s.channelName(matchID),
		"jti": fmt.Sprintf("%d-%d", time.Now().UnixNano(), rand.Int63()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

func (s *ChannelTokenService) channelName(matchID string) string {
	return "match-" + matchID + "@" + s.realm
}
