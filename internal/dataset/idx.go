package dataset

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/mat"
)

// IDX magic numbers.
const (
	idxImagesMagic = 2051
	idxLabelsMagic = 2049
)

// MNIST file names inside a data directory.
const (
	MNISTTrainImages = "train-images-idx3-ubyte"
	MNISTTrainLabels = "train-labels-idx1-ubyte"
	MNISTTestImages  = "t10k-images-idx3-ubyte"
	MNISTTestLabels  = "t10k-labels-idx1-ubyte"
)

// MNISTValidation is the fraction of the 60000 training images held out
// for validation, leaving 50000 for training.
const MNISTValidation = 1.0 / 6.0

// LoadIDX loads an image/label file pair in IDX format. Each image is
// flattened to one row of rows*cols pixels scaled to [0, 1].
// maxSamples limits the number of samples (0 = all).
func LoadIDX(imagesPath, labelsPath string, maxSamples int) (Dataset, error) {
	images, size, err := readIDXImages(imagesPath, maxSamples)
	if err != nil {
		return Dataset{}, fmt.Errorf("failed to load images: %w", err)
	}
	labelsRaw, err := readIDXLabels(labelsPath, maxSamples)
	if err != nil {
		return Dataset{}, fmt.Errorf("failed to load labels: %w", err)
	}
	n := len(images) / size
	if n != len(labelsRaw) {
		return Dataset{}, fmt.Errorf("%w: image count (%d) != label count (%d)", ErrInvalidData, n, len(labelsRaw))
	}

	x := mat.NewDense(n, size, nil)
	raw := x.RawMatrix().Data
	for i, px := range images {
		raw[i] = float64(px) / 255.0
	}
	labels := make([]int, n)
	for i, l := range labelsRaw {
		labels[i] = int(l)
	}
	return Dataset{X: x, Labels: labels}, nil
}

// LoadMNIST loads the four MNIST IDX files from dir. The training file is
// split into Train and Val with MNISTValidation; the t10k files become Test.
func LoadMNIST(dir string, maxSamples int) (Splits, error) {
	train, err := LoadIDX(filepath.Join(dir, MNISTTrainImages), filepath.Join(dir, MNISTTrainLabels), maxSamples)
	if err != nil {
		return Splits{}, err
	}
	test, err := LoadIDX(filepath.Join(dir, MNISTTestImages), filepath.Join(dir, MNISTTestLabels), maxSamples)
	if err != nil {
		return Splits{}, err
	}
	tr, val := train.Split(MNISTValidation)
	return Splits{Train: tr, Val: val, Test: test}, nil
}

// readIDXImages reads an IDX image file:
//
//	magic number: 0x00000803 (2051)
//	number of images: 4 bytes
//	number of rows: 4 bytes
//	number of cols: 4 bytes
//	pixel data: unsigned bytes (0-255)
//
// It returns the pixels of all images back to back and the image size.
func readIDXImages(filename string, maxSamples int) ([]byte, int, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, 0, err
	}
	defer file.Close()

	var header struct {
		Magic, Count, Rows, Cols uint32
	}
	if err := binary.Read(file, binary.BigEndian, &header); err != nil {
		return nil, 0, fmt.Errorf("failed to read header: %w", err)
	}
	if header.Magic != idxImagesMagic {
		return nil, 0, fmt.Errorf("%w: invalid magic number: got %d, want %d", ErrInvalidData, header.Magic, idxImagesMagic)
	}

	size := int(header.Rows * header.Cols)
	if size == 0 {
		return nil, 0, fmt.Errorf("%w: empty image dimensions", ErrInvalidData)
	}
	count := int(header.Count)
	if maxSamples > 0 && count > maxSamples {
		count = maxSamples
	}
	pixels := make([]byte, count*size)
	if _, err := io.ReadFull(file, pixels); err != nil {
		return nil, 0, fmt.Errorf("failed to read %d images: %w", count, err)
	}
	return pixels, size, nil
}

// readIDXLabels reads an IDX label file:
//
//	magic number: 0x00000801 (2049)
//	number of labels: 4 bytes
//	label data: unsigned bytes
func readIDXLabels(filename string, maxSamples int) ([]byte, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var header struct {
		Magic, Count uint32
	}
	if err := binary.Read(file, binary.BigEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if header.Magic != idxLabelsMagic {
		return nil, fmt.Errorf("%w: invalid magic number: got %d, want %d", ErrInvalidData, header.Magic, idxLabelsMagic)
	}

	count := int(header.Count)
	if maxSamples > 0 && count > maxSamples {
		count = maxSamples
	}
	labels := make([]byte, count)
	if _, err := io.ReadFull(file, labels); err != nil {
		return nil, fmt.Errorf("failed to read labels: %w", err)
	}
	return labels, nil
}
