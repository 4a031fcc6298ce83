// Package server provides the loopback HTTP server used to complete the OAuth2 installed-app flow.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
// [BasicRouter] uses method-qualified [http.ServeMux] patterns, so a request with the wrong
// method gets 405 from the mux itself. [Middleware] added first runs outermost.
//
// # OAuth Callback Handler
//
// [OAuthHandler] validates the state parameter, exchanges the authorization code (with the PKCE
// verifier) for a token, and sends the result through a channel. It only processes one callback.
//
// # Loopback Flow
//
// [Loopback] ties the pieces together: it binds the callback server, opens the consent page in a
// browser, waits for the redirect and shuts the server down again. Its Authorize method is the
// interactive authorizer handed to services.GoogleAuth when no usable cached token exists.
package server
