// Package model defines the data structures representing platform namespaces,
// services, their descriptive info and the metadata descriptor of a service
// source tree.
//
// # Envelopes
//
// Every platform response is wrapped in an envelope:
//
//	{"status": "success", "result": <payload>}
//	{"status": "error", "message": "no such namespace"}
//
// DecodeEnvelope parses one and keeps the whole document in Envelope.Raw so
// that it can be attached to errors as payload.
//
// # Descriptive Info
//
// NamespaceInfo and ServiceInfo expose the fields the SDK relies on as named
// fields. Every other key returned by the platform is reachable through Raw;
// remote keys never overwrite the identity of a handle.
//
// The service type controls how endpoint results are classified:
//
//	query, map_filter  -> JSON envelope, result is unwrapped
//	anything else      -> raw response is handed back
//
// # Registration Status
//
// While a freshly submitted service is being built, GET on its path returns
//
//	{"status": "success", "result": {"service": null}}
//
// and, if the build fails,
//
//	{"status": "success", "result": {"service": null, "slot": "error", "msg": "..."}}
//
// ServiceStatus.Present treats any non-null value as ready, including an
// empty object.
//
// # Metadata Descriptor
//
// A service source tree carries a metadata.yml (or metadata.yaml):
//
//	name: genes_by_locus
//	type: query
//	description: Look up genes by AGI locus
//	endpoints:
//	  - search
//
// Name and Type are required.
package model
