package gatekeeper

import (
	"fmt"
	"runtime"

	ort "github.com/yalue/onnxruntime_go"
)

// featureCount is the width of the model's input row. It must match the
// exported ONNX graph.
const featureCount = 6

// Scorer produces a scalar approval score for one feature row.
type Scorer interface {
	Score(features []float32) (float32, error)
	Close()
}

// ONNXScorer runs a pretrained scalar-output ONNX model.
type ONNXScorer struct {
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
}

// InitializeORT points the runtime at the platform's shared library and
// initializes the environment. Safe to call more than once.
func InitializeORT() error {
	libPath := "/usr/lib/libonnxruntime.so"
	switch runtime.GOOS {
	case "windows":
		libPath = "onnxruntime.dll"
	case "darwin":
		libPath = "libonnxruntime.dylib"
	}
	ort.SetSharedLibraryPath(libPath)
	return ort.InitializeEnvironment()
}

// NewONNXScorer loads the model at the given path.
func NewONNXScorer(modelPath string) (*ONNXScorer, error) {
	_ = InitializeORT()

	inputTensor, err := ort.NewTensor(ort.NewShape(1, featureCount), make([]float32, featureCount))
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}
	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 1))
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{"x"}, []string{"y"},
		[]ort.Value{inputTensor}, []ort.Value{outputTensor}, nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &ONNXScorer{session: session, input: inputTensor, output: outputTensor}, nil
}

// Score runs one inference over the feature row.
func (s *ONNXScorer) Score(features []float32) (float32, error) {
	if len(features) != featureCount {
		return 0, fmt.Errorf("expected %d features, got %d", featureCount, len(features))
	}
	copy(s.input.GetData(), features)
	if err := s.session.Run(); err != nil {
		return 0, fmt.Errorf("inference failed: %w", err)
	}
	return s.output.GetData()[0], nil
}

// Close releases the session and its tensors.
func (s *ONNXScorer) Close() {
	if s.session != nil {
		s.session.Destroy()
	}
	if s.input != nil {
		s.input.Destroy()
	}
	if s.output != nil {
		s.output.Destroy()
	}
}
