package ctx

import (
	"github.com/valyala/fasthttp"
)

const UserKey = "user"

// SetUser records the authenticated dashboard user on the request.
func SetUser(ctx *fasthttp.RequestCtx, user string) {
	ctx.SetUserValue(UserKey, user)
}

func UserFromCtx(ctx *fasthttp.RequestCtx) (string, bool) {
	v := ctx.UserValue(UserKey)
	if v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
