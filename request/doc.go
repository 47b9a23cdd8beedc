// Package request builds the immutable descriptor of one HTTP call.
//
// A Request is validated when it is built: the URL is percent-encoded for the
// query-allowed character set, every multipart part carries exactly one
// payload source, and every parameter is encodable for the body it will be
// written into. Nothing touches the network here.
//
//	req, err := request.New(request.MethodPost, "https://api.example.com/users",
//	    request.WithParam("name", "abc"),
//	    request.WithHeader("X-Tenant", "acme"),
//	)
//
// Uploads carry parts, each backed by a file or by inline bytes:
//
//	req, err := request.New(request.MethodUpload, "https://api.example.com/files",
//	    request.WithPart(request.FilePart("doc", "/tmp/report.pdf")),
//	    request.WithPart(request.DataPart("thumb", png, "thumb.png", "image/png")),
//	)
package request
