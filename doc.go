// Package staedi validates EDI interchanges (X12 and EDIFACT style) against a
// structural schema.
//
// The root package holds the public validation model shared by every other
// package: error codes, events, the Handler callback interface and the Issue
// error model. Implementations live in sub-packages:
//
//   - charset: per-session code point classification and delimiter lookup
//   - schema:  the schema graph, syntax rules and document loading
//   - usage:   usage trees recording which schema slots an occurrence populated
//   - rules:   the six positional syntax rule strategies
//   - stream:  the session façade that scans, binds and validates input
//
// Typical usage:
//
//	s, err := schema.NewFactory().CreateSchemaFromFile("x12.yaml")
//	sess, err := stream.NewSession(s, stream.Options{})
//	issues, err := sess.Validate(ctx, f)
package staedi
