// SPDX-License-Identifier: MIT

package vcov

import "strings"

// Scheme selects the covariance estimator.
type Scheme int

const (
	Classical Scheme = iota
	HC0
	HC1
	HC2
	HC3
	Cluster
)

var schemeNames = [...]string{
	Classical: "iid",
	HC0:       "HC0",
	HC1:       "HC1",
	HC2:       "HC2",
	HC3:       "HC3",
	Cluster:   "CRV1",
}

// String returns the canonical scheme name.
func (s Scheme) String() string {
	if s < 0 || int(s) >= len(schemeNames) {
		return "invalid"
	}

	return schemeNames[s]
}

// ParseScheme accepts "iid"/"classical", "hetero" (HC1), "HC0".."HC3" and
// "CRV1"/"cluster", case-insensitively.
func ParseScheme(name string) (Scheme, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "iid", "classical":
		return Classical, nil
	case "hc0":
		return HC0, nil
	case "hc1", "hetero":
		return HC1, nil
	case "hc2":
		return HC2, nil
	case "hc3":
		return HC3, nil
	case "crv1", "cluster":
		return Cluster, nil
	}

	return 0, &InvalidSchemeError{Name: name}
}
