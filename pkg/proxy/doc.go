// Package proxy resolves logical service names and forwards requests to backend services.
//
// # Overview
//
// The resolver maps the closed set of logical services (auth, user, org,
// media, timeseries, audit, alert, device) to configured base URLs, validated
// once at startup. The dispatcher builds the outbound request: correlation
// and identity headers, original Authorization preserved, bodies streamed
// through, and a bounded timeout with exactly one attempt per inbound request.
//
// # Usage
//
//	resolver, err := proxy.NewResolver(cfg.Downstream)
//	dispatcher := proxy.NewDispatcher(resolver, cfg.Downstream.Timeout)
//
//	resp, err := dispatcher.Forward(ctx, proxy.ForwardRequest{
//		Method:  http.MethodGet,
//		Service: proxy.ServiceUser,
//		Path:    "/users/" + id,
//	})
//	var de *proxy.DownstreamError
//	if errors.As(err, &de) {
//		// 502: de.Service names the unreachable backend
//	}
//
// # Related Packages
//
//   - pkg/gateway: drives Forward from the dispatch stage
//   - pkg/transcode: shapes the returned response for the client
package proxy
