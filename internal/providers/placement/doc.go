/*
Package placement proposes background traffic for a road network.

The compiler treats placement as a black box behind Source. Two
implementations ship with the module:

  - Catalog serves precomputed candidate lists loaded from a YAML or JSON
    file, thinned to the requested density.
  - Client asks a remote placement service over HTTP, with retries on
    transient failures.

Either may fail; callers are expected to degrade to zero candidates.
*/
package placement
