package detect

// Class indices the soccer detection model is trained on
const (
	// ClassBall is the class index of the ball
	ClassBall = 0
	// ClassGoalkeeper is the class index of a goalkeeper
	ClassGoalkeeper = 1
	// ClassPlayer is the class index of a player
	ClassPlayer = 2
	// ClassReferee is the class index of a referee
	ClassReferee = 3
)

// ClassNames are the model class names in index order
var ClassNames = []string{"ball", "goalkeeper", "player", "referee"}
