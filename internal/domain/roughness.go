package domain

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnknownLandCover signals a land cover class code with no roughness entry.
var ErrUnknownLandCover = errors.New("unknown land cover class")

// RoughnessEstimator supplies aerodynamic roughness lengths for coordinates.
// Implementations sample a land cover raster (or equivalent) around each
// location; every returned value is positive.
type RoughnessEstimator interface {
	// EstimateRoughness returns the roughness length in meters at loc.
	EstimateRoughness(ctx context.Context, loc Location) (float64, error)

	// EstimateRoughnessBatch returns one roughness length per location,
	// in the same order as locs.
	EstimateRoughnessBatch(ctx context.Context, locs []Location) ([]float64, error)
}

// roughnessByLandCover maps CORINE land cover class codes (grid codes 1–44)
// to roughness lengths in meters. Values follow the conventional assignment
// for European land cover: dense urban fabric is roughest, open water the
// smoothest.
var roughnessByLandCover = map[int]float64{
	// Artificial surfaces.
	1:  1.2,    // continuous urban fabric
	2:  0.5,    // discontinuous urban fabric
	3:  0.5,    // industrial or commercial units
	4:  0.0005, // road and rail networks
	5:  0.0005, // port areas
	6:  0.0005, // airports
	7:  0.005,  // mineral extraction sites
	8:  0.3,    // dump sites
	9:  0.1,    // construction sites
	10: 0.3,    // green urban areas
	11: 0.03,   // sport and leisure facilities

	// Agricultural areas.
	12: 0.05, // non-irrigated arable land
	13: 0.05, // permanently irrigated land
	14: 0.05, // rice fields
	15: 0.1,  // vineyards
	16: 0.3,  // fruit tree and berry plantations
	17: 0.1,  // olive groves
	18: 0.03, // pastures
	19: 0.1,  // annual crops with permanent crops
	20: 0.3,  // complex cultivation patterns
	21: 0.1,  // agriculture with natural vegetation
	22: 0.3,  // agro-forestry areas

	// Forest and semi-natural areas.
	23: 0.75,   // broad-leaved forest
	24: 0.75,   // coniferous forest
	25: 0.75,   // mixed forest
	26: 0.03,   // natural grasslands
	27: 0.05,   // moors and heathland
	28: 0.05,   // sclerophyllous vegetation
	29: 0.3,    // transitional woodland-shrub
	30: 0.0003, // beaches, dunes, sands
	31: 0.0003, // bare rocks
	32: 0.005,  // sparsely vegetated areas
	33: 0.005,  // burnt areas
	34: 0.001,  // glaciers and perpetual snow

	// Wetlands.
	35: 0.011,  // inland marshes
	36: 0.011,  // peat bogs
	37: 0.005,  // salt marshes
	38: 0.005,  // salines
	39: 0.0005, // intertidal flats

	// Water bodies.
	40: 0.001,  // water courses
	41: 0.0005, // water bodies
	42: 0.0005, // coastal lagoons
	43: 0.0005, // estuaries
	44: 0.0002, // sea and ocean
}

// RoughnessFromLandCover converts a CORINE land cover class code into a
// roughness length in meters.
func RoughnessFromLandCover(code int) (float64, error) {
	z0, ok := roughnessByLandCover[code]
	if !ok {
		return 0, fmt.Errorf("%w: code %d", ErrUnknownLandCover, code)
	}
	return z0, nil
}
