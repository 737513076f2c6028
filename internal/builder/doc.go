// Package builder walks a site's source tree and produces the published
// output tree.
//
// A build runs depth-first over the source directories. Each directory
// resolves the layout it inherits, renders its paginated listing when
// configured, then renders or copies every file before descending. All output
// goes to a staging directory next to the build root; only a build that
// finishes without error replaces the build root, so readers see either the
// previous complete tree or the new one.
package builder
