// Package middleware provides the HTTP middleware used by the snapshot API.
//
// Every middleware has the shape func(http.Handler) http.Handler so they
// chain directly:
//
//	handler := middleware.PanicRecovery(logger)(mux)
//	handler = middleware.RequestID()(handler)
//	handler = middleware.Logging(logger, middleware.GetRequestID)(handler)
//	handler = middleware.CORS(middleware.DefaultCORSConfig())(handler)
package middleware
