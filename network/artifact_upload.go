package network

import (
	"io"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// ArtifactUpload pushes one file from a packaged bag into the
// archival S3 bucket. This is how preservation copies reach
// long-term storage once the ingest service has produced them.
//
// Typical usage:
//
// upload := NewArtifactUpload(config.ArtifactRegion, config.ArtifactBucket,
//                             "bag-42/data/file.xml", "application/xml")
// upload.AddMetadata("bag", "bag-42")
// upload.AddMetadata("bagpath", "data/file.xml")
// upload.AddMetadata("sha256", "87654321")
// reader, err := os.Open("/path/to/file.xml")
// if err != nil {
//    ... whatever ...
// }
// defer reader.Close()
// upload.Send(reader)
// if upload.ErrorMessage != "" {
//    ... do something ...
// }
// urlOfNewItem := upload.Response.Location
type ArtifactUpload struct {
	AWSRegion    string
	ErrorMessage string
	UploadInput  *s3manager.UploadInput
	Response     *s3manager.UploadOutput
	session      *session.Session
}

// NewArtifactUpload creates a new upload object. Params:
//
// region      - The name of the AWS region to upload to.
// bucket      - The name of the bucket to upload to, usually
//               config.ArtifactBucket.
// key         - The key under which to store the file. We use
//               "<bag name>/<relative path within bag>".
// contentType - A standard Content-Type header, like text/html.
func NewArtifactUpload(region, bucket, key, contentType string) *ArtifactUpload {
	uploadInput := &s3manager.UploadInput{
		Bucket:      &bucket,
		Key:         &key,
		ContentType: &contentType,
	}
	uploadInput.Metadata = make(map[string]*string)
	return &ArtifactUpload{
		AWSRegion:   region,
		UploadInput: uploadInput,
	}
}

// GetSession returns an S3 session for this upload.
func (client *ArtifactUpload) GetSession() *session.Session {
	if client.session == nil {
		var err error
		client.session, err = GetS3Session(client.AWSRegion)
		if err != nil {
			client.ErrorMessage = err.Error()
		}
	}
	return client.session
}

// AddMetadata adds x-amz-meta-* metadata to the upload. We record at
// least the bag name, the file's path within the bag, and its sha256
// digest from the bag manifest.
func (client *ArtifactUpload) AddMetadata(key, value string) {
	client.UploadInput.Metadata[key] = &value
}

// Send uploads the file to S3. If ErrorMessage == "", the upload
// succeeded. Check Response.Location for the item's S3 URL.
// Caller is responsible for closing the reader.
func (client *ArtifactUpload) Send(reader io.Reader) {
	_session := client.GetSession()
	if _session == nil {
		return
	}
	client.UploadInput.Body = reader
	uploader := s3manager.NewUploader(_session)
	uploader.LeavePartsOnError = false // we have to pay for abandoned parts
	var err error
	client.Response, err = uploader.Upload(client.UploadInput)
	if err != nil {
		client.ErrorMessage = err.Error()
	}
}
