package middleware

import (
	"bytes"
	"crypto/subtle"
	"encoding/base64"

	"github.com/valyala/fasthttp"
	"golang.org/x/crypto/bcrypt"

	"cctvinsight/internal/config"
	httpctx "cctvinsight/internal/http/ctx"
)

const realm = `Basic realm="cctvinsight", charset="UTF-8"`

// BasicAuth returns middleware that checks HTTP basic credentials against the
// configured user and bcrypt hash. With auth disabled it returns next as-is.
func BasicAuth(cfg *config.Config) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if !cfg.AuthEnabled() {
		return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
			return next
		}
	}

	wantUser := []byte(cfg.Auth.User)
	hash := []byte(cfg.Auth.PasswordHash)

	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			user, pass, ok := parseBasicAuth(ctx.Request.Header.Peek("Authorization"))
			if !ok ||
				subtle.ConstantTimeCompare(user, wantUser) != 1 ||
				bcrypt.CompareHashAndPassword(hash, pass) != nil {
				ctx.Response.Header.Set("WWW-Authenticate", realm)
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				ctx.SetBodyString("unauthorized")
				return
			}

			httpctx.SetUser(ctx, string(user))
			next(ctx)
		}
	}
}

func parseBasicAuth(auth []byte) (user, pass []byte, ok bool) {
	const prefix = "Basic "
	if len(auth) < len(prefix) || !bytes.EqualFold(auth[:len(prefix)], []byte(prefix)) {
		return nil, nil, false
	}

	decoded, err := base64.StdEncoding.DecodeString(string(bytes.TrimSpace(auth[len(prefix):])))
	if err != nil {
		return nil, nil, false
	}
	user, pass, ok = bytes.Cut(decoded, []byte(":"))
	if !ok {
		return nil, nil, false
	}
	return user, pass, true
}
