package utils

import "math"

const (
	NODETOL = 1.e-12
)

// Tolerances of the local contact solvers
const (
	BEAMCONTACTMAXITER    = 50                   // Newton iterations of CPP and PTL
	BEAMCONTACTTOL        = 1.e-10               // absolute residual tolerance
	RELBEAMCONTACTTOL     = 1.e-6                // relative residual tolerance
	RELRESIDUALMIN        = 1.e-6                // initial residual above which the relative criterion is used
	XIETAITERATIVEDISPTOL = 1.e-10               // parameter increment tolerance
	XIETARESOLUTIONFAC    = 10.                  // contact points closer than XIETARESOLUTIONFAC*XIETAITERATIVEDISPTOL coincide
	MAXDELTAXIETA         = 2.                   // largest Newton step in parameter space
	NORMTOL               = 1.e-12               // smallest admissible distance of the centerlines
	COLLINEARTOL          = 1.e-12               // smallest determinant of the CPP Jacobian
	DETERMINANTTOL        = 1.e-12               // smallest determinant in the parameter linearizations
	NORMALTOL             = 1.e-5                // smallest admissible |n.n_old|
	NEIGHBORTOL           = 2.                   // |xi|+|eta| below which coincident axes are an error
	NEIGHBORNORMALTOL     = 5.                   // |xi_old| above which no neighbor normal is searched
	DAMPTOL               = 1.e-8                // degenerate damping regularization
	MAXDELTADFAC          = 0.8                  // fraction of the search box a node may move per step
	MAXPENETRATIONFAC     = 0.8                  // fraction of R1+R2 a gap may penetrate
	ANGLETOL              = 0.1 / 180. * math.Pi // segments closer than 0.1 degree are parallel
	SEGMENTSAFETYFAC      = 1.1                  // enlargement of the segment distance limit
	SHIFTANGLESAFETYFAC   = 1.5                  // enlargement of the shift angles by the segment angle
	MAXCURVATURERADIUS    = 0.005                // largest admissible R*kappa_max
	GAUSSPOINTSAFETYFAC   = 1.5                  // Gauss point spacing factor for line contact
	NUMGAUSSPOINTS        = 5                    // Gauss points per integration interval
	MAXSEGMENTS           = 256                  // default segment limit per element
	TANGENTTOL            = 1.e-8                // smallest admissible tangent length
	CPPBOUNDARYFAC        = 1.1                  // contact points within CPPBOUNDARYFAC*XIETAITERATIVEDISPTOL of +-1 are ambiguous
)
