package clientdef

import (
	"encoding/json"
	"strings"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// RequestConfig is the configuration file handed to the client. It describes a single HTTP
// call.
//
// URL may contain {name} placeholders which the client replaces with the matching PathParams
// values. A Payload that is null is omitted from the file, in which case the client sends no
// body and defaults the method to GET.
type RequestConfig struct {
	URL         string
	Method      string
	Headers     Params
	PathParams  Params
	QueryParams Params
	Payload     ldvalue.Value
	PayloadFile string
}

type requestConfigJSON struct {
	URL         string          `json:"url"`
	Method      string          `json:"method,omitempty"`
	Headers     *Params         `json:"headers,omitempty"`
	PathParams  *Params         `json:"path_params,omitempty"`
	QueryParams *Params         `json:"query_params,omitempty"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	PayloadFile string          `json:"payload_file,omitempty"`
}

// WithBaseURL returns a copy of the configuration whose URL is prefixed with baseURL, if the
// URL is a path rather than an absolute URL.
func (c RequestConfig) WithBaseURL(baseURL string) RequestConfig {
	if strings.HasPrefix(c.URL, "/") {
		c.URL = strings.TrimSuffix(baseURL, "/") + c.URL
	}
	return c
}

// EffectiveMethod is the method the client is expected to use: the configured one, or POST
// when there is a payload and GET when there is not.
func (c RequestConfig) EffectiveMethod() string {
	if c.Method != "" {
		return c.Method
	}
	if c.HasPayload() {
		return "POST"
	}
	return "GET"
}

func (c RequestConfig) HasPayload() bool {
	return !c.Payload.IsNull() || c.PayloadFile != ""
}

func (c RequestConfig) MarshalJSON() ([]byte, error) {
	out := requestConfigJSON{
		URL:         c.URL,
		Method:      c.Method,
		PayloadFile: c.PayloadFile,
	}
	for _, f := range []struct {
		in  Params
		out **Params
	}{
		{c.Headers, &out.Headers},
		{c.PathParams, &out.PathParams},
		{c.QueryParams, &out.QueryParams},
	} {
		if !f.in.IsEmpty() || f.in.AsList {
			p := f.in
			*f.out = &p
		}
	}
	if !c.Payload.IsNull() {
		data, err := CanonicalJSON(c.Payload)
		if err != nil {
			return nil, err
		}
		out.Payload = data
	}
	return json.Marshal(out)
}

func (c *RequestConfig) UnmarshalJSON(data []byte) error {
	var in requestConfigJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*c = RequestConfig{
		URL:         in.URL,
		Method:      in.Method,
		PayloadFile: in.PayloadFile,
	}
	if in.Headers != nil {
		c.Headers = *in.Headers
	}
	if in.PathParams != nil {
		c.PathParams = *in.PathParams
	}
	if in.QueryParams != nil {
		c.QueryParams = *in.QueryParams
	}
	if len(in.Payload) != 0 {
		if err := json.Unmarshal(in.Payload, &c.Payload); err != nil {
			return err
		}
	}
	return nil
}

// CanonicalJSON serializes a value with object keys in sorted order, so that the same value
// always produces the same bytes.
func CanonicalJSON(value ldvalue.Value) ([]byte, error) {
	return json.Marshal(value.AsArbitraryValue())
}
