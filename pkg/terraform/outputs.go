/*
Copyright © 2026 Mifos Initiative
SPDX-License-Identifier: Apache-2.0
*/

package terraform

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openmf/fineract-deploy/pkg/errors"
)

// Well-known output keys the pipeline depends on.
const (
	OutClusterName      = "cluster_name"
	OutClusterEndpoint  = "cluster_endpoint"
	OutClusterCAData    = "cluster_ca_data"
	OutDBEndpoint       = "db_endpoint"
	OutDBName           = "db_name"
	OutDBUsername       = "db_username"
	OutDBPasswordARN    = "db_password_secret_arn"
	OutArtifactBucket   = "artifact_bucket"
	OutBackupBucket     = "backup_bucket"
	OutExternalDNSRole  = "external_dns_role_arn"
	OutLoadBalancerHost = "load_balancer_hostname"
)

// Output is a single terraform output value.
type Output struct {
	Value     any  `json:"value"`
	Sensitive bool `json:"sensitive"`
}

// Outputs is the parsed `terraform output -json` document.
type Outputs map[string]Output

// ParseOutputs decodes a terraform output JSON document.
func ParseOutputs(raw []byte) (Outputs, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, errors.New(errors.ErrCodeNotFound, "terraform produced no outputs")
	}

	var out Outputs
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to parse terraform outputs", err)
	}
	return out, nil
}

// String returns the named output as a string. A missing output is a
// NOT_FOUND error: downstream steps cannot proceed without cluster identity.
func (o Outputs) String(key string) (string, error) {
	v, ok := o[key]
	if !ok {
		return "", errors.NewWithContext(errors.ErrCodeNotFound,
			"required terraform output missing: "+key,
			map[string]any{"output": key})
	}
	s, ok := v.Value.(string)
	if !ok {
		return "", errors.New(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("terraform output %s is %T, expected string", key, v.Value))
	}
	return s, nil
}

// StringOr returns the named output or a fallback when absent.
func (o Outputs) StringOr(key, fallback string) string {
	s, err := o.String(key)
	if err != nil {
		return fallback
	}
	return s
}

// Require verifies every named output is present, reporting all missing keys
// in one error.
func (o Outputs) Require(keys ...string) error {
	var missing []string
	for _, key := range keys {
		if _, ok := o[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return errors.NewWithContext(errors.ErrCodeNotFound,
			"required terraform outputs missing: "+strings.Join(missing, ", "),
			map[string]any{"missing": missing})
	}
	return nil
}
