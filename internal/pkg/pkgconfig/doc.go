// Package pkgconfig reads application configuration.
//
// Values come from a YAML file and may be overridden by environment variables
// (key "fluig.prd.password" maps to FLUIG_PRD_PASSWORD).
package pkgconfig
