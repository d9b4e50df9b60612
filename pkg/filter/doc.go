// Package filter implements the pixel transformations applied by imgfilter.
//
// Every transformation satisfies [Filter]: it receives exclusive use of a
// [grid.Grid] for the duration of Apply, mutates it in place, and keeps no
// reference to it afterwards. Filters own only their scalar parameters.
//
// # Filters
//
//   - [Crop]: keep the top-left Width x Height region
//   - [Grayscale], [Negative], [AutoContrast], [Gamma]: per-channel point operations
//   - [Sharpen], [EdgeDetect]: fixed 3x3 kernels over a bordered copy (see [Extend])
//   - [GaussianBlur]: four sliding-window box blurs approximating a Gaussian
//   - [Pixelate]: square block means
//   - [Crystallize]: jittered-grid Voronoi tessellation with per-region means
//
// # Borders
//
// Convolution reads from a padded copy produced by [Extend]. Left and right
// edges replicate the nearest column; the top and bottom padded rows
// replicate the first and last source rows but keep black corners. This
// corner policy is deliberate and must be preserved.
//
// # Concurrency
//
// Row-independent passes are split into bands and run concurrently. Every
// pass reads from a snapshot that no worker writes to, so no filter observes
// partially updated neighbours.
package filter
