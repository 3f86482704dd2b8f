package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"recipebox/auth"
	"recipebox/errs"
	"recipebox/logging"
	"recipebox/utils"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

const resolveTimeout = 5 * time.Second

// Guard turns the Authorization header into a resolved Identity.
type Guard struct {
	codec    *auth.TokenCodec
	resolver *auth.Resolver
	revoker  auth.Revoker
}

// NewGuard wires the guard. revoker may be nil when no revocation list is
// configured.
func NewGuard(codec *auth.TokenCodec, resolver *auth.Resolver, revoker auth.Revoker) *Guard {
	return &Guard{codec: codec, resolver: resolver, revoker: revoker}
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", errs.ErrMissingCredential
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", errs.ErrMalformed
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", errs.ErrMalformed
	}
	return token, nil
}

// Identify runs the full check: header, token, revocation, then the store.
func (g *Guard) Identify(ctx context.Context, header string) (utils.Identity, error) {
	raw, err := BearerToken(header)
	if err != nil {
		return utils.Identity{}, err
	}

	claims, err := g.codec.Verify(raw)
	if err != nil {
		return utils.Identity{}, err
	}

	if g.revoker != nil && claims.ID != "" && g.revoker.IsRevoked(ctx, claims.ID) {
		return utils.Identity{}, errs.ErrRevoked
	}

	user, err := g.resolver.Resolve(ctx, claims.UserID)
	if err != nil {
		return utils.Identity{}, err
	}

	id := utils.Identity{
		UserID:   user.ID,
		Username: user.Username,
		TokenID:  claims.ID,
		User:     user,
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id, nil
}

// Authenticate rejects the request unless it carries a valid token for an
// existing user. next only ever runs with an Identity in the context.
func (g *Guard) Authenticate(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		ctx, cancel := context.WithTimeout(r.Context(), resolveTimeout)
		id, err := g.Identify(ctx, r.Header.Get("Authorization"))
		cancel()
		if err != nil {
			if !errors.Is(err, errs.ErrStoreFailure) {
				logging.Debug("request rejected",
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
			}
			utils.RespondWithAppError(w, r, err)
			return
		}

		next(w, r.WithContext(utils.WithIdentity(r.Context(), id)), ps)
	}
}

// OptionalAuth attaches an Identity when the request carries a usable token
// and proceeds either way.
func (g *Guard) OptionalAuth(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if header := r.Header.Get("Authorization"); header != "" {
			ctx, cancel := context.WithTimeout(r.Context(), resolveTimeout)
			id, err := g.Identify(ctx, header)
			cancel()
			if err == nil {
				r = r.WithContext(utils.WithIdentity(r.Context(), id))
			}
		}
		next(w, r, ps)
	}
}

// IdentityFrom reads the Identity stored by Authenticate or OptionalAuth.
func IdentityFrom(ctx context.Context) (utils.Identity, bool) {
	return utils.IdentityFromContext(ctx)
}
