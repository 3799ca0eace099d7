package preflight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/openmf/fineract-deploy/pkg/errors"
	"github.com/openmf/fineract-deploy/pkg/runner"
)

func TestToolsAllPresent(t *testing.T) {
	c := New(runner.NewFake(), nil)

	checks := c.Tools("terraform", "aws", "kubeseal")
	require.Len(t, checks, 3)
	for _, check := range checks {
		assert.True(t, check.OK, check.Name)
	}
}

func TestToolsEnumeratesAllMissing(t *testing.T) {
	f := runner.NewFake()
	f.MissingTools = []string{"terraform", "kubeseal"}
	c := New(f, nil)

	s := &Summary{Checks: c.Tools("terraform", "aws", "kubeseal")}

	// all missing tools reported at once, not just the first
	assert.Equal(t, []string{"terraform", "kubeseal"}, s.Failed())

	err := s.Err()
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodePrecondition, errors.CodeOf(err))
	assert.Contains(t, err.Error(), "terraform")
	assert.Contains(t, err.Error(), "kubeseal")
}

func TestCloudIdentity(t *testing.T) {
	f := runner.NewFake().Script("aws sts get-caller-identity", runner.FakeResponse{
		Result: runner.Result{Stdout: "arn:aws:iam::123456789012:user/deployer\n"},
	})
	c := New(f, nil)

	check := c.CloudIdentity(t.Context())
	assert.True(t, check.OK)
	assert.Equal(t, "arn:aws:iam::123456789012:user/deployer", check.Detail)
}

func TestCloudIdentityInvalid(t *testing.T) {
	f := runner.NewFake().Script("aws sts get-caller-identity", runner.FakeResponse{
		Result: runner.Result{ExitCode: 255, Stderr: "ExpiredToken"},
		Err:    errors.New(errors.ErrCodeExternalCommand, "aws exited non-zero"),
	})
	c := New(f, nil)

	check := c.CloudIdentity(t.Context())
	assert.False(t, check.OK)
}

func TestClusterReachable(t *testing.T) {
	c := New(runner.NewFake(), fake.NewClientset())
	check := c.ClusterReachable(t.Context())
	assert.True(t, check.OK)

	// no client configured
	c = New(runner.NewFake(), nil)
	check = c.ClusterReachable(t.Context())
	assert.False(t, check.OK)
}

func TestRunProfile(t *testing.T) {
	f := runner.NewFake().Script("aws sts get-caller-identity", runner.FakeResponse{
		Result: runner.Result{Stdout: "arn:aws:iam::123456789012:role/ci"},
	})
	c := New(f, fake.NewClientset())

	s := c.Run(t.Context(), RequiredTools("deploy")...)
	require.NoError(t, s.Err())
	// 3 tools + identity + cluster
	assert.Len(t, s.Checks, 5)
}

func TestRequiredTools(t *testing.T) {
	assert.Equal(t, []string{"terraform", "aws"}, RequiredTools("provision"))
	assert.Equal(t, []string{"aws", "kubeseal"}, RequiredTools("secrets"))
	assert.Equal(t, []string{"gh"}, RequiredTools("promote"))
	// kubeseal stays required: incompatible secrets are fixed by re-sealing
	assert.Contains(t, RequiredTools("deploy"), "kubeseal")
	assert.Nil(t, RequiredTools("verify"))
}
