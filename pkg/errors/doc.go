// Package errors provides structured error types for better observability
// and programmatic error handling across the deployment pipeline.
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeTimeout,
//	    "argocd-server never became available",
//	    ctx.Err(),
//	    map[string]interface{}{
//	        "deployment": "argocd-server",
//	        "namespace":  "argocd",
//	    },
//	)
package errors
