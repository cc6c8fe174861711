// Package pose encodes and decodes the on-disk pose-estimation label format.
//
// One label file holds one line per annotated skeleton:
//
//	<class> <cx> <cy> <w> <h> <x1> <y1> ... <xn> <yn>
//
// where class is the variant's class index, (cx,cy,w,h) is a tight bounding
// box over the present keypoints, and the keypoint pairs follow the variant's
// fixed part order. All coordinates are normalized to the image dimensions
// and written with six decimal digits; an absent keypoint is written as the
// literal pair "-1 -1".
//
// The codec is lossless up to the six-decimal quantization: decode(encode(s))
// reproduces variants, present/absent patterns, and positions within
// 0.5/1e6 of the image dimension per axis.
package pose

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mlenz/keymark/pkg/skeleton"
)

var (
	// ErrNoAnnotations is returned by Encode when no skeleton has a present
	// keypoint. There is nothing to persist; callers must delete any
	// previously written label file so no stale annotations survive.
	ErrNoAnnotations = errors.New("no annotations to persist")

	// ErrMalformedLine tags lines Decode skipped. Decoding never aborts on
	// a bad line; the error is only produced by DecodeStrict-style checks
	// in callers that want per-line reporting.
	ErrMalformedLine = errors.New("malformed label line")
)

// Encode serializes skeletons to label-file text, one line per skeleton in
// sequence order. Skeletons with zero present keypoints emit no line. When
// every skeleton is skipped, Encode returns ErrNoAnnotations.
func Encode(skeletons []*skeleton.Skeleton, imageWidth, imageHeight int) (string, error) {
	var lines []string
	for _, s := range skeletons {
		if line, ok := encodeLine(s, imageWidth, imageHeight); ok {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return "", ErrNoAnnotations
	}
	return strings.Join(lines, "\n"), nil
}

func encodeLine(s *skeleton.Skeleton, imageWidth, imageHeight int) (string, bool) {
	var (
		pairs              []string
		minX, minY         float64
		maxX, maxY         float64
		present            bool
	)

	for _, part := range s.Variant.Parts() {
		kp := s.Keypoints[part]
		if kp == nil {
			pairs = append(pairs, "-1", "-1")
			continue
		}
		nx := kp.X / float64(imageWidth)
		ny := kp.Y / float64(imageHeight)
		if !present {
			minX, maxX = nx, nx
			minY, maxY = ny, ny
			present = true
		} else {
			minX = min(minX, nx)
			maxX = max(maxX, nx)
			minY = min(minY, ny)
			maxY = max(maxY, ny)
		}
		pairs = append(pairs, fmtCoord(nx), fmtCoord(ny))
	}

	// The bounding box is undefined without at least one present keypoint,
	// so such skeletons emit no line at all.
	if !present {
		return "", false
	}

	head := fmt.Sprintf("%d %s %s %s %s",
		s.Variant.ClassIndex(),
		fmtCoord((minX+maxX)/2),
		fmtCoord((minY+maxY)/2),
		fmtCoord(maxX-minX),
		fmtCoord(maxY-minY),
	)
	return head + " " + strings.Join(pairs, " "), true
}

// fmtCoord formats a normalized coordinate with six decimal digits.
func fmtCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// Decode parses label-file text back into skeletons.
//
// Lines with fewer than five fields are skipped as malformed; decoding never
// aborts the whole file. Class 0 reads as LMG, anything else as Rifle.
// Keypoint pairs are consumed in the variant's fixed part order; fields
// beyond the variant's part count are ignored, and missing trailing pairs leave
// those keypoints absent. A pair with both values >= 0 is denormalized by
// the image dimensions; any other pair reads as absent.
//
// Ids are assigned with the same smallest-unused-positive allocation the
// annotation store uses, so loaded skeletons number 1..n in line order.
func Decode(text string, imageWidth, imageHeight int) []*skeleton.Skeleton {
	var out []*skeleton.Skeleton
	for _, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		s, err := decodeLine(fields, imageWidth, imageHeight)
		if err != nil {
			continue
		}
		s.ID = nextID(out)
		out = append(out, s)
	}
	return out
}

// DecodeReport is Decode plus per-line diagnostics for validation tooling.
// The skipped slice holds one error per rejected line, wrapped with the
// 1-based line number.
func DecodeReport(text string, imageWidth, imageHeight int) (skeletons []*skeleton.Skeleton, skipped []error) {
	for i, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		s, err := decodeLine(fields, imageWidth, imageHeight)
		if err != nil {
			skipped = append(skipped, fmt.Errorf("line %d: %w", i+1, err))
			continue
		}
		s.ID = nextID(skeletons)
		skeletons = append(skeletons, s)
	}
	return skeletons, skipped
}

func decodeLine(fields []string, imageWidth, imageHeight int) (*skeleton.Skeleton, error) {
	if len(fields) < 5 {
		return nil, fmt.Errorf("%w: %d fields, need at least 5", ErrMalformedLine, len(fields))
	}
	class, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, fmt.Errorf("%w: class %q", ErrMalformedLine, fields[0])
	}

	v := skeleton.VariantForClass(class)
	s := skeleton.NewEmpty(0, v)

	// Fields 1..4 are the bounding box. It is derivable from the keypoints,
	// so decoding ignores it beyond requiring its presence.
	keypoints := fields[5:]
	for i, part := range v.Parts() {
		idx := i * 2
		if idx+1 >= len(keypoints) {
			break
		}
		x, errX := strconv.ParseFloat(keypoints[idx], 64)
		y, errY := strconv.ParseFloat(keypoints[idx+1], 64)
		if errX != nil || errY != nil {
			continue
		}
		if x >= 0 && y >= 0 {
			s.Keypoints[part] = &skeleton.Point{
				X: x * float64(imageWidth),
				Y: y * float64(imageHeight),
			}
		}
	}
	return s, nil
}

// nextID mirrors the store's allocation: smallest positive integer not used
// by the skeletons decoded so far.
func nextID(existing []*skeleton.Skeleton) int {
	taken := make(map[int]struct{}, len(existing))
	for _, s := range existing {
		taken[s.ID] = struct{}{}
	}
	for id := 1; ; id++ {
		if _, ok := taken[id]; !ok {
			return id
		}
	}
}
