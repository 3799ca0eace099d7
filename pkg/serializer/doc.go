// Package serializer provides utilities for writing reports, bundles, and
// terraform outputs in JSON or YAML, to stdout or a file.
//
// Usage:
//
//	w := serializer.NewFileWriterOrStdout(serializer.FormatYAML, path)
//	defer w.Close()
//	if err := w.Serialize(ctx, report); err != nil {
//		return err
//	}
package serializer
