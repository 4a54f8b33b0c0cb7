package consts

const (
	Epsilon0 = 8.8541878128e-12  // Vacuum permittivity (F/m), CODATA 2018
	Mu0      = 1.25663706212e-06 // Vacuum permeability (H/m), CODATA 2018
	C0       = 299792458.0       // Speed of light in vacuum (m/s)
)
