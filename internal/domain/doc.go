// Package domain models wind resource assessment over reanalysis weather data.
//
// # Logarithmic wind profile
//
// In the atmospheric boundary layer the mean wind speed grows roughly
// logarithmically with height above ground. Given a speed u(h_m) measured at
// height h_m and the aerodynamic roughness length z0 of the surrounding
// terrain, the speed at a target height h_t is estimated as
//
//	u(h_t) = u(h_m) * ln(h_t / z0) / ln(h_m / z0)
//
// The roughness length (meters) is the height at which the modeled mean wind
// speed drops to zero: around 0.0002 m over open water, 0.03 m over grassland,
// 0.75 m over forest, and above 1 m in dense urban fabric. Reanalysis datasets
// publish wind components at fixed reference heights (50 m for MERRA-2 style
// sources), so projecting to turbine hub heights (80–150 m) is the standard
// first step of a site assessment. See [Projector].
//
// # Time series
//
// A [Series] is an ordered sequence of timestamped wind speeds for one
// [Location]. A [Batch] groups series from several locations over one shared
// timestamp index; the alignment invariant is enforced by [NewBatch] and lets
// the projection apply one roughness value per location across identical
// time axes.
//
// # Roughness from land cover
//
// Roughness lengths are derived from CORINE-style land cover classification
// codes through a fixed lookup table, see [RoughnessFromLandCover]. The
// lookup itself (raster sampling at a coordinate) is an external concern
// behind the [RoughnessEstimator] interface; fetching wind speed series is
// behind [WeatherSource].
package domain
