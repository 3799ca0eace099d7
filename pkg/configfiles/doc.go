// Package configfiles rewrites externally observed endpoints (load-balancer
// hostnames) into a fixed set of configuration files, matching either a
// literal placeholder token or the AWS ELB hostname pattern. Rewrites are
// atomic per file and idempotent: a second run with the same target modifies
// nothing.
package configfiles
