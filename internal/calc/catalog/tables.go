package catalog

// Catalog-native figures, dimensions in inches, flow areas in in²,
// linear surface in ft² per ft of length.

type doublePipeRow struct {
	pipeID        float64 // inside diameter of the inner pipe
	pipeOD        float64 // outside diameter of the inner pipe
	annulusID     float64 // inside diameter of the outer pipe
	flowArea      float64 // inside of the inner pipe
	linearSurface float64
}

var doublePipeRows = map[string]doublePipeRow{
	"2*1-1/4": {pipeID: 1.380, pipeOD: 1.66, annulusID: 2.067, flowArea: 1.50, linearSurface: 0.435},
	"3*2":     {pipeID: 2.067, pipeOD: 2.38, annulusID: 3.068, flowArea: 3.35, linearSurface: 0.622},
	"4*3":     {pipeID: 3.068, pipeOD: 3.50, annulusID: 4.026, flowArea: 7.38, linearSurface: 0.917},
}

type tubeRow struct {
	bwg           int
	wall          float64
	tubeID        float64
	flowArea      float64 // per tube
	linearSurface float64
}

type tubeSize struct {
	od   float64
	rows []tubeRow
}

var tubeSizes = map[string]tubeSize{
	"1/2": {od: 0.5, rows: []tubeRow{
		{12, 0.109, 0.282, 0.0625, 0.1309},
		{14, 0.083, 0.334, 0.0876, 0.1309},
		{16, 0.065, 0.370, 0.1076, 0.1309},
		{20, 0.035, 0.430, 0.145, 0.1309},
	}},
	"3/4": {od: 0.75, rows: []tubeRow{
		{10, 0.134, 0.482, 0.182, 0.1963},
		{11, 0.120, 0.510, 0.204, 0.1963},
		{12, 0.109, 0.532, 0.223, 0.1963},
		{13, 0.095, 0.560, 0.247, 0.1963},
		{14, 0.083, 0.584, 0.268, 0.1963},
		{15, 0.072, 0.606, 0.289, 0.1963},
		{16, 0.065, 0.620, 0.302, 0.1963},
		{17, 0.058, 0.634, 0.314, 0.1963},
		{18, 0.049, 0.652, 0.334, 0.1963},
	}},
	"1": {od: 1.0, rows: []tubeRow{
		{8, 0.165, 0.670, 0.355, 0.2618},
		{9, 0.148, 0.704, 0.389, 0.2618},
		{10, 0.134, 0.732, 0.421, 0.2618},
		{11, 0.120, 0.760, 0.455, 0.2618},
		{12, 0.109, 0.782, 0.479, 0.2618},
		{13, 0.095, 0.810, 0.515, 0.2618},
		{14, 0.083, 0.834, 0.546, 0.2618},
		{15, 0.072, 0.856, 0.576, 0.2618},
		{16, 0.065, 0.870, 0.594, 0.2618},
	}},
}

type pitchEntry struct {
	tubeOD float64
	pitch  float64
}

var pitchRows = map[Arrangement][]pitchEntry{
	Square: {
		{0.75, 1},
		{1, 1.25},
		{1.25, 1.5625},
		{1.5, 1.875},
	},
	Triangular: {
		{0.75, 1},
		{1, 1.25},
		{1.25, 1.5625},
		{1.5, 1.875},
	},
}
