package tracker

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

// floatsEqual compares slices of float32
func floatsEqual(a, b []float32, epsilon float32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if diff := a[i] - b[i]; diff > epsilon || diff < -epsilon {
			return false
		}
	}
	return true
}

// matricesEqual compares matrices
func matricesEqual(a, b mat.Matrix, epsilon float64) bool {
	r1, c1 := a.Dims()
	r2, c2 := b.Dims()

	if r1 != r2 || c1 != c2 {
		return false
	}

	for i := 0; i < r1; i++ {
		for j := 0; j < c1; j++ {
			if diff := a.At(i, j) - b.At(i, j); diff > epsilon || diff < -epsilon {
				return false
			}
		}
	}

	return true
}

// TestKalmanFilter checks initiate and predict against precomputed values
// for a 100x200 box measurement of height 50
func TestKalmanFilter(t *testing.T) {

	kf := newKalmanFilter(1.0/20, 1.0/160)

	mean := make(stateMean, 8)
	covariance := &stateCov{mat.NewDense(8, 8, nil)}

	measurement := []float32{100.0, 200.0, 1.0, 50.0}

	kf.initiate(mean, covariance, measurement)

	expectedMeanInit := stateMean{100.0, 200.0, 1.0, 50.0, 0.0, 0.0, 0.0, 0.0}

	expectedCovarianceInit := mat.NewDense(8, 8, []float64{
		25.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0,
		0.0, 25.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0,
		0.0, 0.0, 1e-4, 0.0, 0.0, 0.0, 0.0, 0.0,
		0.0, 0.0, 0.0, 25.0, 0.0, 0.0, 0.0, 0.0,
		0.0, 0.0, 0.0, 0.0, 9.765625, 0.0, 0.0, 0.0,
		0.0, 0.0, 0.0, 0.0, 0.0, 9.765625, 0.0, 0.0,
		0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 1e-10, 0.0,
		0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 9.765625,
	})

	if !floatsEqual(mean, expectedMeanInit, 1e-4) {
		t.Errorf("expected mean %v, got %v", expectedMeanInit, mean)
	}

	if !matricesEqual(covariance, expectedCovarianceInit, 1e-4) {
		t.Errorf("unexpected covariance after initiate %v",
			mat.Formatted(covariance, mat.Prefix(""), mat.Excerpt(0)))
	}

	kf.predict(mean, covariance)

	// prediction with zero velocity keeps the mean in place
	expectedMeanPredict := stateMean{100.0, 200.0, 1.0, 50.0, 0.0, 0.0, 0.0, 0.0}

	expectedCovariancePredict := mat.NewDense(8, 8, []float64{
		41.015625, 0.0, 0.0, 0.0, 9.765625, 0.0, 0.0, 0.0,
		0.0, 41.015625, 0.0, 0.0, 0.0, 9.765625, 0.0, 0.0,
		0.0, 0.0, 2.0000e-4, 0.0, 0.0, 0.0, 1e-10, 0.0,
		0.0, 0.0, 0.0, 41.015625, 0.0, 0.0, 0.0, 9.765625,
		9.765625, 0.0, 0.0, 0.0, 9.86328125, 0.0, 0.0, 0.0,
		0.0, 9.765625, 0.0, 0.0, 0.0, 9.86328125, 0.0, 0.0,
		0.0, 0.0, 1e-10, 0.0, 0.0, 0.0, 2e-10, 0.0,
		0.0, 0.0, 0.0, 9.765625, 0.0, 0.0, 0.0, 9.86328125,
	})

	if !floatsEqual(mean, expectedMeanPredict, 1e-4) {
		t.Errorf("expected predicted mean %v, got %v", expectedMeanPredict, mean)
	}

	if !matricesEqual(covariance, expectedCovariancePredict, 1e-4) {
		t.Errorf("unexpected covariance after predict %v",
			mat.Formatted(covariance, mat.Prefix(""), mat.Excerpt(0)))
	}

	// updating with a shifted measurement pulls the mean towards it
	err := kf.update(mean, covariance, []float32{104.0, 204.0, 1.0, 50.0})

	if err != nil {
		t.Fatalf("update returned error: %v", err)
	}

	if mean[0] <= 100.0 || mean[0] >= 104.0 {
		t.Errorf("expected x between measurement and prediction, got %f", mean[0])
	}

	if mean[1] <= 200.0 || mean[1] >= 204.0 {
		t.Errorf("expected y between measurement and prediction, got %f", mean[1])
	}
}
