package detection

import (
	"math"
	"sort"

	"github.com/mkellner/escval/internal/imaging"
)

// ExtractOptions controls line segment extraction.
type ExtractOptions struct {
	// MinLength is the shortest segment kept, in pixels.
	MinLength int

	// MaxGap is the largest break bridged while tracing collinear edge
	// pixels. Dashed and partially occluded strokes stay whole as long as
	// their gaps are below this.
	MaxGap int

	// MaxSegments caps the number of returned segments. Zero means the
	// default of 200.
	MaxSegments int
}

const defaultMaxSegments = 200

// pointTolerance is how far (in pixels) an edge pixel may sit from the
// ideal Hough line and still belong to it.
const pointTolerance = 2.0

// ExtractSegments finds straight line segments in an edge map using a
// Hough transform.
//
// Edge pixels vote for (rho, theta) line parameterizations; accumulator
// peaks above a vote threshold become candidate lines. For each candidate
// the supporting edge pixels are projected onto the line direction and
// split into runs wherever a gap exceeds MaxGap; each run at least
// MinLength long becomes one segment. Pixels consumed by an emitted
// segment are excluded from later candidates so one physical stroke does
// not appear twice.
//
// An empty edge map yields an empty slice; zero segments is a valid
// outcome, not an error.
func ExtractSegments(edges *imaging.EdgeImage, opts ExtractOptions) []LineSegment {
	width := edges.Width()
	height := edges.Height()
	if width == 0 || height == 0 {
		return nil
	}

	maxSegments := opts.MaxSegments
	if maxSegments <= 0 {
		maxSegments = defaultMaxSegments
	}

	// Collect edge points once
	type point struct{ x, y int }
	points := make([]point, 0)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if edges.On(x, y) {
				points = append(points, point{x, y})
			}
		}
	}
	if len(points) == 0 {
		return nil
	}

	// Vote in Hough space
	maxDist := int(math.Sqrt(float64(width*width + height*height)))
	numAngles := 180
	accumulator := make([][]int, maxDist*2)
	for i := range accumulator {
		accumulator[i] = make([]int, numAngles)
	}

	sinTab := make([]float64, numAngles)
	cosTab := make([]float64, numAngles)
	for theta := 0; theta < numAngles; theta++ {
		angle := float64(theta) * math.Pi / 180.0
		sinTab[theta] = math.Sin(angle)
		cosTab[theta] = math.Cos(angle)
	}

	for _, p := range points {
		for theta := 0; theta < numAngles; theta++ {
			rho := float64(p.x)*cosTab[theta] + float64(p.y)*sinTab[theta]
			rhoIdx := int(rho) + maxDist
			if rhoIdx >= 0 && rhoIdx < maxDist*2 {
				accumulator[rhoIdx][theta]++
			}
		}
	}

	// Find local-maximum peaks above the vote threshold
	type peak struct {
		rho   int
		theta int
		votes int
	}
	threshold := opts.MinLength / 2
	if threshold < 1 {
		threshold = 1
	}
	peaks := make([]peak, 0)

	for rhoIdx := 0; rhoIdx < maxDist*2; rhoIdx++ {
		for theta := 0; theta < numAngles; theta++ {
			if accumulator[rhoIdx][theta] < threshold {
				continue
			}
			isMax := true
			for dr := -2; dr <= 2 && isMax; dr++ {
				for dt := -2; dt <= 2 && isMax; dt++ {
					if dr == 0 && dt == 0 {
						continue
					}
					nr := rhoIdx + dr
					nt := (theta + dt + numAngles) % numAngles
					if nr >= 0 && nr < maxDist*2 && accumulator[nr][nt] > accumulator[rhoIdx][theta] {
						isMax = false
					}
				}
			}
			if isMax {
				peaks = append(peaks, peak{rho: rhoIdx - maxDist, theta: theta, votes: accumulator[rhoIdx][theta]})
			}
		}
	}

	sort.Slice(peaks, func(i, j int) bool {
		if peaks[i].votes != peaks[j].votes {
			return peaks[i].votes > peaks[j].votes
		}
		if peaks[i].rho != peaks[j].rho {
			return peaks[i].rho < peaks[j].rho
		}
		return peaks[i].theta < peaks[j].theta
	})

	claimed := make([]bool, width*height)
	segments := make([]LineSegment, 0)

	for _, pk := range peaks {
		if len(segments) >= maxSegments {
			break
		}

		cosA := cosTab[pk.theta]
		sinA := sinTab[pk.theta]
		rho := float64(pk.rho)

		// Gather unclaimed edge points near this line, with their
		// projection along the line direction
		type linePoint struct {
			x, y int
			t    float64
		}
		linePoints := make([]linePoint, 0)
		for _, p := range points {
			if claimed[p.y*width+p.x] {
				continue
			}
			dist := math.Abs(float64(p.x)*cosA + float64(p.y)*sinA - rho)
			if dist < pointTolerance {
				t := -float64(p.x)*sinA + float64(p.y)*cosA
				linePoints = append(linePoints, linePoint{x: p.x, y: p.y, t: t})
			}
		}
		if len(linePoints) < 2 {
			continue
		}

		sort.Slice(linePoints, func(i, j int) bool { return linePoints[i].t < linePoints[j].t })

		// Split into runs at gaps wider than MaxGap
		runStart := 0
		flush := func(start, end int) {
			first := linePoints[start]
			last := linePoints[end]
			dx := float64(last.x - first.x)
			dy := float64(last.y - first.y)
			length := math.Sqrt(dx*dx + dy*dy)
			if length < float64(opts.MinLength) {
				return
			}
			for i := start; i <= end; i++ {
				claimed[linePoints[i].y*width+linePoints[i].x] = true
			}
			segments = append(segments, LineSegment{
				X1:                   first.x,
				Y1:                   first.y,
				X2:                   last.x,
				Y2:                   last.y,
				Classification:       Unknown,
				NearestLabelDistance: -1,
				NearestLabelRole:     RoleUnspecified,
			})
		}

		for i := 1; i < len(linePoints); i++ {
			if linePoints[i].t-linePoints[i-1].t > float64(opts.MaxGap) {
				flush(runStart, i-1)
				runStart = i
			}
		}
		flush(runStart, len(linePoints)-1)
	}

	return segments
}

// ExtractAndClassify runs extraction followed by solid/dashed
// classification of every segment.
func ExtractAndClassify(edges *imaging.EdgeImage, opts ExtractOptions, cls ClassifyOptions) []LineSegment {
	segments := ExtractSegments(edges, opts)
	for i := range segments {
		segments[i] = ClassifySegment(edges, segments[i], cls)
	}
	return segments
}
