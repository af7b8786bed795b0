package handler

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/url"
	"strings"

	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/goliatone/go-logtrail/logs"
	"github.com/goliatone/go-logtrail/pkg/types"
	"github.com/goliatone/go-masker"
)

// FeatureRequestParams toggles query/form param capture through a feature gate.
const FeatureRequestParams = "logtrail.request_params"

// ActorResolver extracts the user responsible for a request.
type ActorResolver func(*http.Request) *types.Actor

func (h *Hook) applyRequest(ctx context.Context, record *types.Record, r *http.Request) {
	if r == nil {
		return
	}
	record.Request.Method = r.Method
	if r.URL != nil {
		record.Request.Path = r.URL.Path
	}
	record.Request.Referrer = clientAddress(r)

	if actor := h.actorResolver(r); actor != nil {
		record.Actor = actor
	}

	if !h.captureParams(ctx, record.Actor) {
		return
	}
	if r.URL != nil {
		record.Request.Query = h.encodeParams(r.URL.Query())
	}
	if r.PostForm != nil {
		record.Request.Body = h.encodeParams(r.PostForm)
	}
}

func (h *Hook) captureParams(ctx context.Context, actor *types.Actor) bool {
	if h.captureRequestParams {
		return true
	}
	if h.gate == nil {
		return false
	}
	var opts []featuregate.ResolveOption
	if actor != nil && actor.ID != nil {
		opts = append(opts, featuregate.WithScopeChain(featuregate.ScopeChain{
			{Kind: featuregate.ScopeUser, ID: formatID(*actor.ID)},
			{Kind: featuregate.ScopeSystem},
		}))
	}
	enabled, err := h.gate.Enabled(ctx, FeatureRequestParams, opts...)
	if err != nil {
		h.logger.Error("logtrail: resolve request params feature failed", err)
		return false
	}
	return enabled
}

func (h *Hook) encodeParams(values url.Values) string {
	params := paramsToMap(values)
	params = logs.SanitizeParams(h.masker, params)
	encoded, err := json.Marshal(params)
	if err != nil {
		h.logger.Error("logtrail: encode request params failed", err)
		return ""
	}
	return string(encoded)
}

// paramsToMap keeps single values as strings and repeated keys as lists.
func paramsToMap(values url.Values) map[string]any {
	out := make(map[string]any, len(values))
	for key, list := range values {
		switch len(list) {
		case 0:
			out[key] = ""
		case 1:
			out[key] = list[0]
		default:
			items := make([]any, 0, len(list))
			for _, item := range list {
				items = append(items, item)
			}
			out[key] = items
		}
	}
	return out
}

// clientAddress prefers the last X-Forwarded-For hop, which is the one added
// by the closest proxy.
func clientAddress(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		hops := strings.Split(forwarded, ",")
		return strings.TrimSpace(hops[len(hops)-1])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func defaultMasker(mask *masker.Masker) *masker.Masker {
	if mask != nil {
		return mask
	}
	return logs.DefaultMasker()
}
