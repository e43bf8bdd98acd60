// Package bootstrap loads the resources extensions declare in their corpus
// manifests when the host starts, and removes the files it staged when the
// host quits.
//
// Startup resolves the platform, subscribes the cleanup hook, then walks
// every installed extension once. Each manifest's bundles are resolved
// against the version-aware layout and each resource is staged into the
// working directory or handed to the host's module loader. Failures are
// contained in the smallest unit they occur in (resource, bundle,
// extension) and collected in a Report; nothing here is fatal to the host.
package bootstrap
