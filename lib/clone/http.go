// Copyright 2026 The Grove Authors
// SPDX-License-Identifier: Apache-2.0

package clone

import (
	"log/slog"
	"net/http"
	"os"
)

// NewHTTPClient builds the client used for bundle downloads. This is
// the one-time, process-wide transfer context: proxy settings come
// from the environment (http_proxy and friends), credentials from the
// user's netrc file, and GROVE_CURL_VERBOSE turns on request/response
// debug logging. Failure to read the credentials file is not an error
// — bundle servers that need auth will answer 401, which the caller
// treats as "bundle unavailable".
func NewHTTPClient(logger *slog.Logger) *http.Client {
	if logger == nil {
		logger = slog.Default()
	}
	credentials, err := loadNetrc()
	if err != nil {
		logger.Debug("netrc credentials unavailable", "error", err)
	}
	return &http.Client{
		Transport: &transferTransport{
			base:        &http.Transport{Proxy: http.ProxyFromEnvironment},
			credentials: credentials,
			verbose:     os.Getenv("GROVE_CURL_VERBOSE") != "",
			logger:      logger,
		},
	}
}

// transferTransport decorates the base transport with netrc basic
// auth and optional verbose logging.
type transferTransport struct {
	base        http.RoundTripper
	credentials map[string]credential
	verbose     bool
	logger      *slog.Logger
}

func (t *transferTransport) RoundTrip(request *http.Request) (*http.Response, error) {
	if cred, ok := t.credentials[request.URL.Hostname()]; ok {
		// RoundTrippers must not mutate the caller's request.
		request = request.Clone(request.Context())
		request.SetBasicAuth(cred.login, cred.password)
	}
	if t.verbose {
		t.logger.Debug("http request", "method", request.Method, "url", request.URL.String())
	}
	response, err := t.base.RoundTrip(request)
	if t.verbose && err == nil {
		t.logger.Debug("http response", "url", request.URL.String(), "status", response.StatusCode)
	}
	return response, err
}
