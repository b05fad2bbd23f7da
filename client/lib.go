// Package client implements a very simple wrapper for the web API of the node.
package client

import (
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-resty/resty/v2"
)

var (
	// ErrBadRequest defines the "bad request" error.
	ErrBadRequest = errors.New("bad request")
	// ErrInternalServerError defines the "internal server error" error.
	ErrInternalServerError = errors.New("internal server error")
	// ErrNotFound defines the "not found" error.
	ErrNotFound = errors.New("not found")
	// ErrServiceUnavailable defines the "service unavailable" error.
	ErrServiceUnavailable = errors.New("service unavailable")
	// ErrUnknownError defines the "unknown error" error.
	ErrUnknownError = errors.New("unknown error")
)

const defaultTimeout = 30 * time.Second

// NodeAPI is an API wrapper over the web API of the node.
type NodeAPI struct {
	client *resty.Client
}

// NewNodeAPI returns a new *NodeAPI that sends its requests to baseURL.
func NewNodeAPI(baseURL string) *NodeAPI {
	return &NodeAPI{
		client: resty.New().
			SetHostURL(baseURL).
			SetTimeout(defaultTimeout).
			SetHeader("Accept", "application/json"),
	}
}

// BaseURL returns the baseURL of the API.
func (api *NodeAPI) BaseURL() string {
	return api.client.HostURL
}

type errorresponse struct {
	Error string `json:"error"`
}

func (api *NodeAPI) do(method string, route string, reqObj interface{}, resObj interface{}) error {
	request := api.client.R().SetError(&errorresponse{})
	if reqObj != nil {
		request.SetHeader("Content-Type", "application/json").SetBody(reqObj)
	}
	if resObj != nil {
		request.SetResult(resObj)
	}

	res, err := request.Execute(method, route)
	if err != nil {
		return errors.Wrapf(err, "failed to %s %s", method, route)
	}

	return interpretResponse(res)
}

func interpretResponse(res *resty.Response) error {
	if res.IsSuccess() {
		return nil
	}

	message := res.Status()
	if errRes, ok := res.Error().(*errorresponse); ok && errRes.Error != "" {
		message = errRes.Error
	}

	switch res.StatusCode() {
	case http.StatusInternalServerError:
		return errors.Wrap(ErrInternalServerError, message)
	case http.StatusNotFound:
		return errors.Wrapf(ErrNotFound, "%s: %s", res.Request.URL, message)
	case http.StatusBadRequest:
		return errors.Wrap(ErrBadRequest, message)
	case http.StatusServiceUnavailable:
		return errors.Wrap(ErrServiceUnavailable, message)
	}

	return errors.Wrap(ErrUnknownError, message)
}
