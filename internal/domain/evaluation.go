package domain

// ModelEvaluation is the held-out evaluation of one candidate regressor.
type ModelEvaluation struct {
	Model    string
	MAE      float64 // mean absolute error on the held-out partition
	R2       float64 // coefficient of determination on the held-out partition
	Selected bool    // true for the winning candidate
}
