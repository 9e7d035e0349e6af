// Package stats implements the Augmented Dickey-Fuller stationarity test used
// by the differencing analysis. All functions are pure; no I/O.
//
// The test regresses Δy_t on a constant, y_{t-1} and k lagged differences,
// selecting k by AIC. P-values and critical values use MacKinnon's (1994,
// 2010) response-surface approximations for the constant-only case.
package stats

import (
	"fmt"
	"math"
)

// StationarityAlpha is the significance level for the Stationary verdict.
const StationarityAlpha = 0.05

// ADFResult holds the outcome of an Augmented Dickey-Fuller test.
type ADFResult struct {
	Statistic  float64            `json:"adf_statistic"`
	PValue     float64            `json:"p_value"`
	UsedLag    int                `json:"used_lag"`
	NObs       int                `json:"n_obs"`
	Critical   map[string]float64 `json:"critical_values"` // keys "1%", "5%", "10%"
	Stationary bool               `json:"stationary"`      // p-value < 0.05
}

// ADF runs the test over values. NaN entries are dropped first; dates play no
// role, the regression runs over the observation index.
func ADF(values []float64) (ADFResult, error) {
	y := dropNaN(values)
	if len(y) < 10 {
		return ADFResult{}, fmt.Errorf("adf: need at least 10 non-missing observations, got %d", len(y))
	}

	maxLag := int(math.Ceil(12 * math.Pow(float64(len(y))/100, 0.25)))
	// keep enough rows for the longest regression
	if hard := (len(y)-1)/2 - 2; maxLag > hard {
		maxLag = hard
	}
	if maxLag < 0 {
		maxLag = 0
	}

	// Lag selection on the common sample so AICs are comparable.
	bestLag, err := selectLagAIC(y, maxLag)
	if err != nil {
		return ADFResult{}, err
	}

	fit, err := adfRegress(y, bestLag, bestLag)
	if err != nil {
		return ADFResult{}, err
	}

	res := ADFResult{
		Statistic: fit.tau,
		PValue:    mackinnonP(fit.tau),
		UsedLag:   bestLag,
		NObs:      fit.nobs,
		Critical:  mackinnonCrit(fit.nobs),
	}
	res.Stationary = res.PValue < StationarityAlpha
	return res, nil
}

func dropNaN(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// selectLagAIC picks the lag count minimizing AIC, fitting every candidate on
// the sample implied by maxLag so row counts match across candidates.
func selectLagAIC(y []float64, maxLag int) (int, error) {
	bestLag, bestAIC := 0, math.Inf(1)
	for lag := 0; lag <= maxLag; lag++ {
		fit, err := adfRegress(y, lag, maxLag)
		if err != nil {
			continue
		}
		if fit.aic < bestAIC {
			bestAIC = fit.aic
			bestLag = lag
		}
	}
	if math.IsInf(bestAIC, 1) {
		return 0, fmt.Errorf("adf: no lag produced a solvable regression")
	}
	return bestLag, nil
}

type adfFit struct {
	tau  float64 // t-statistic on the y_{t-1} coefficient
	aic  float64
	nobs int
}

// adfRegress fits Δy_t = α + ρ·y_{t-1} + Σ β_i·Δy_{t-i} + ε using rows
// t > holdout (holdout >= lag keeps the sample fixed during lag selection).
func adfRegress(y []float64, lag, holdout int) (adfFit, error) {
	dy := make([]float64, len(y)-1)
	for i := 1; i < len(y); i++ {
		dy[i-1] = y[i] - y[i-1]
	}

	nparams := lag + 2
	start := holdout + 1 // first usable t in y-index space
	nobs := len(y) - start
	if nobs <= nparams {
		return adfFit{}, fmt.Errorf("adf: %d observations cannot support %d parameters", nobs, nparams)
	}

	// Design matrix rows: [1, y_{t-1}, Δy_{t-1}, ..., Δy_{t-lag}]
	X := make([][]float64, nobs)
	b := make([]float64, nobs)
	for r := 0; r < nobs; r++ {
		t := start + r
		row := make([]float64, nparams)
		row[0] = 1
		row[1] = y[t-1]
		for i := 1; i <= lag; i++ {
			row[1+i] = dy[t-1-i]
		}
		X[r] = row
		b[r] = dy[t-1]
	}

	coef, rss, se, err := olsSolve(X, b, 1)
	if err != nil {
		return adfFit{}, err
	}
	if se == 0 {
		return adfFit{}, fmt.Errorf("adf: zero standard error on lag coefficient")
	}

	n := float64(nobs)
	return adfFit{
		tau:  coef[1] / se,
		aic:  n*math.Log(rss/n) + 2*float64(nparams),
		nobs: nobs,
	}, nil
}

// olsSolve solves min ||Xb - y|| via the normal equations and returns the
// coefficients, the residual sum of squares, and the standard error of the
// coefficient at column seCol.
func olsSolve(X [][]float64, y []float64, seCol int) (coef []float64, rss, se float64, err error) {
	n, p := len(X), len(X[0])

	// XtX and Xty
	xtx := make([][]float64, p)
	xty := make([]float64, p)
	for i := 0; i < p; i++ {
		xtx[i] = make([]float64, p)
		for j := 0; j < p; j++ {
			var s float64
			for r := 0; r < n; r++ {
				s += X[r][i] * X[r][j]
			}
			xtx[i][j] = s
		}
		var s float64
		for r := 0; r < n; r++ {
			s += X[r][i] * y[r]
		}
		xty[i] = s
	}

	coef, err = gaussSolve(cloneMatrix(xtx), append([]float64(nil), xty...))
	if err != nil {
		return nil, 0, 0, err
	}

	for r := 0; r < n; r++ {
		var pred float64
		for j := 0; j < p; j++ {
			pred += X[r][j] * coef[j]
		}
		d := y[r] - pred
		rss += d * d
	}

	// se(b_j) = sqrt(s² · (XᵀX)⁻¹_jj), via solving XᵀX z = e_j
	ej := make([]float64, p)
	ej[seCol] = 1
	z, err := gaussSolve(cloneMatrix(xtx), ej)
	if err != nil {
		return nil, 0, 0, err
	}
	sigma2 := rss / float64(n-p)
	se = math.Sqrt(sigma2 * z[seCol])
	return coef, rss, se, nil
}

// gaussSolve solves Ax = b in place with partial pivoting.
func gaussSolve(A [][]float64, b []float64) ([]float64, error) {
	n := len(A)
	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(A[r][col]) > math.Abs(A[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(A[pivot][col]) < 1e-12 {
			return nil, fmt.Errorf("singular design matrix")
		}
		A[col], A[pivot] = A[pivot], A[col]
		b[col], b[pivot] = b[pivot], b[col]

		for r := col + 1; r < n; r++ {
			f := A[r][col] / A[col][col]
			for c := col; c < n; c++ {
				A[r][c] -= f * A[col][c]
			}
			b[r] -= f * b[col]
		}
	}
	x := make([]float64, n)
	for r := n - 1; r >= 0; r-- {
		s := b[r]
		for c := r + 1; c < n; c++ {
			s -= A[r][c] * x[c]
		}
		x[r] = s / A[r][r]
	}
	return x, nil
}

func cloneMatrix(m [][]float64) [][]float64 {
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

// ─── MacKinnon approximations (constant-only regression) ──────────────────────

const (
	tauStarC = -1.61
	tauMinC  = -18.83
	tauMaxC  = 2.74
)

var (
	tauSmallP = []float64{2.1659, 1.4412, 0.038269}
	tauLargeP = []float64{1.7339, 0.93202, -0.12745, -0.010368}

	// Response-surface coefficients: crit = c0 + c1/n + c2/n² + c3/n³.
	critCoeffs = map[string][4]float64{
		"1%":  {-3.43035, -6.5393, -16.786, -79.433},
		"5%":  {-2.86154, -2.8903, -4.234, -40.04},
		"10%": {-2.56677, -1.5384, -2.809, 0},
	}
)

// mackinnonP approximates the p-value for an ADF tau statistic.
func mackinnonP(tau float64) float64 {
	switch {
	case tau > tauMaxC:
		return 1
	case tau < tauMinC:
		return 0
	}
	coeffs := tauLargeP
	if tau <= tauStarC {
		coeffs = tauSmallP
	}
	return normCDF(polyval(coeffs, tau))
}

// mackinnonCrit returns finite-sample critical values for nobs observations.
func mackinnonCrit(nobs int) map[string]float64 {
	n := float64(nobs)
	out := make(map[string]float64, len(critCoeffs))
	for level, c := range critCoeffs {
		out[level] = c[0] + c[1]/n + c[2]/(n*n) + c[3]/(n*n*n)
	}
	return out
}

func polyval(coeffs []float64, x float64) float64 {
	var s, pow float64
	pow = 1
	for _, c := range coeffs {
		s += c * pow
		pow *= x
	}
	return s
}

func normCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}
