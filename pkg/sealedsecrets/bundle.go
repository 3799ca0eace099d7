/*
Copyright © 2026 Mifos Initiative
SPDX-License-Identifier: Apache-2.0
*/

package sealedsecrets

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/openmf/fineract-deploy/pkg/environment"
	"github.com/openmf/fineract-deploy/pkg/errors"
)

// SchemaVersion identifies the bundle layout. Bump on incompatible change.
const SchemaVersion = "v1"

// SealingKey is one controller encryption-key Secret, values base64-encoded
// for safe transport through the secret store.
type SealingKey struct {
	Name   string            `yaml:"name" json:"name"`
	Type   string            `yaml:"type" json:"type"`
	Labels map[string]string `yaml:"labels,omitempty" json:"labels,omitempty"`
	Data   map[string]string `yaml:"data" json:"data"`
}

// Bundle is the stored backup artifact: the sealing keys plus enough
// metadata to audit where and when they came from.
type Bundle struct {
	SchemaVersion string       `yaml:"schemaVersion" json:"schemaVersion"`
	ID            string       `yaml:"id" json:"id"`
	Timestamp     time.Time    `yaml:"timestamp" json:"timestamp"`
	Environment   string       `yaml:"environment" json:"environment"`
	SourceContext string       `yaml:"sourceContext,omitempty" json:"sourceContext,omitempty"`
	KeyCount      int          `yaml:"keyCount" json:"keyCount"`
	Keys          []SealingKey `yaml:"keys" json:"keys"`
}

// NewBundle wraps the given key Secrets with metadata. KeyCount is set from
// the actual key slice; Validate later enforces the two never drift.
func NewBundle(env environment.Environment, sourceContext string, secrets []corev1.Secret) *Bundle {
	keys := make([]SealingKey, 0, len(secrets))
	for _, s := range secrets {
		key := SealingKey{
			Name:   s.Name,
			Type:   string(s.Type),
			Labels: s.Labels,
			Data:   make(map[string]string, len(s.Data)),
		}
		for k, v := range s.Data {
			key.Data[k] = base64.StdEncoding.EncodeToString(v)
		}
		keys = append(keys, key)
	}

	return &Bundle{
		SchemaVersion: SchemaVersion,
		ID:            uuid.NewString(),
		Timestamp:     time.Now().UTC(),
		Environment:   env.String(),
		SourceContext: sourceContext,
		KeyCount:      len(keys),
		Keys:          keys,
	}
}

// Validate enforces the round-trip invariant: the recorded count must equal
// the number of keys actually present. A mismatch is always fatal, never
// silently accepted.
func (b *Bundle) Validate() error {
	if b.SchemaVersion != SchemaVersion {
		return errors.New(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("unsupported bundle schema %q, expected %q", b.SchemaVersion, SchemaVersion))
	}
	if b.KeyCount != len(b.Keys) {
		return errors.NewWithContext(errors.ErrCodeCountMismatch,
			fmt.Sprintf("bundle records %d keys but contains %d", b.KeyCount, len(b.Keys)),
			map[string]any{"recorded": b.KeyCount, "actual": len(b.Keys)})
	}
	return nil
}

// Marshal serializes the bundle for storage.
func (b *Bundle) Marshal() ([]byte, error) {
	raw, err := yaml.Marshal(b)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to marshal bundle", err)
	}
	return raw, nil
}

// UnmarshalBundle parses and validates a stored bundle.
func UnmarshalBundle(raw []byte) (*Bundle, error) {
	var b Bundle
	if err := yaml.Unmarshal(raw, &b); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "failed to parse bundle", err)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// Secrets reconstructs the key Secrets for re-application into a cluster.
func (b *Bundle) Secrets(namespace string) ([]*corev1.Secret, error) {
	secrets := make([]*corev1.Secret, 0, len(b.Keys))
	for _, key := range b.Keys {
		data := make(map[string][]byte, len(key.Data))
		for k, v := range key.Data {
			decoded, err := base64.StdEncoding.DecodeString(v)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidRequest,
					"corrupt key data in bundle entry "+key.Name, err)
			}
			data[k] = decoded
		}
		secrets = append(secrets, &corev1.Secret{
			ObjectMeta: metav1.ObjectMeta{
				Name:      key.Name,
				Namespace: namespace,
				Labels:    key.Labels,
			},
			Type: corev1.SecretType(key.Type),
			Data: data,
		})
	}
	return secrets, nil
}
