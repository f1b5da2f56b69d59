package chart

import jsoniter "github.com/json-iterator/go"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JSON encodes the configuration for API consumers.
func (c Config) JSON() ([]byte, error) {
	return json.Marshal(c)
}
