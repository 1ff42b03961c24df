// Package videosvc - Test pipeline ingest: validate, cấp key, persist, lưu media, fan-out jobs.
package videosvc

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"testing"

	"vid_share/internal/api/video/models"
	"vid_share/internal/common"
	"vid_share/internal/queue"
)

// fakeVideoStore giả lập VideoStore trên map trong memory
type fakeVideoStore struct {
	records   map[string]models.Video
	createErr error
}

func newFakeVideoStore() *fakeVideoStore {
	return &fakeVideoStore{records: make(map[string]models.Video)}
}

func (f *fakeVideoStore) Create(_ context.Context, video models.Video) (models.Video, error) {
	if f.createErr != nil {
		return models.Video{}, f.createErr
	}
	if _, ok := f.records[video.VideoID]; ok {
		return models.Video{}, common.ErrDuplicateVideoID
	}
	f.records[video.VideoID] = video
	return video, nil
}

func (f *fakeVideoStore) GetByID(_ context.Context, videoID string) (models.Video, error) {
	v, ok := f.records[videoID]
	if !ok {
		return models.Video{}, common.ErrNotFound
	}
	return v, nil
}

func (f *fakeVideoStore) ListAll(_ context.Context) ([]models.Video, error) {
	out := make([]models.Video, 0, len(f.records))
	for _, v := range f.records {
		out = append(out, v)
	}
	return out, nil
}

func (f *fakeVideoStore) ApplyLike(_ context.Context, videoID, userID string, wantLiked bool) (models.Video, error) {
	v, ok := f.records[videoID]
	if !ok {
		return models.Video{}, common.ErrNotFound
	}
	if wantLiked {
		if !hasLike(&v, userID) {
			v.Likes = append(v.Likes, userID)
		}
	} else {
		kept := v.Likes[:0]
		for _, id := range v.Likes {
			if id != userID {
				kept = append(kept, id)
			}
		}
		v.Likes = kept
	}
	f.records[videoID] = v
	return v, nil
}

func (f *fakeVideoStore) AppendComment(_ context.Context, videoID string, comment models.Comment) (models.Video, error) {
	v, ok := f.records[videoID]
	if !ok {
		return models.Video{}, common.ErrNotFound
	}
	v.Comments = append(v.Comments, comment)
	f.records[videoID] = v
	return v, nil
}

func (f *fakeVideoStore) MarkResolutionReady(_ context.Context, videoID, resolution, uri string) (models.Video, error) {
	v, ok := f.records[videoID]
	if !ok {
		return models.Video{}, common.ErrNotFound
	}
	if v.Resolutions == nil {
		v.Resolutions = map[string]models.Resolution{}
	}
	v.Resolutions[resolution] = models.Resolution{Status: models.ResolutionStatusReady, URI: uri}
	f.records[videoID] = v
	return v, nil
}

func (f *fakeVideoStore) MarkMediaStored(_ context.Context, videoID, sourceMD5 string) (models.Video, error) {
	v, ok := f.records[videoID]
	if !ok {
		return models.Video{}, common.ErrNotFound
	}
	v.MediaStored = true
	v.SourceMD5 = sourceMD5
	f.records[videoID] = v
	return v, nil
}

func (f *fakeVideoStore) IDExists(_ context.Context, videoID string) (bool, error) {
	_, ok := f.records[videoID]
	return ok, nil
}

// fakeMediaSaver giả lập MediaStore, có thể ép lỗi để test partial failure
type fakeMediaSaver struct {
	files   map[string][]byte
	saveErr error
}

func newFakeMediaSaver() *fakeMediaSaver {
	return &fakeMediaSaver{files: make(map[string][]byte)}
}

func (f *fakeMediaSaver) Save(videoID, filename string, data []byte) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	f.files[videoID+"/"+filename] = data
	return filename, nil
}

func (f *fakeMediaSaver) Exists(videoID, filename string) bool {
	_, ok := f.files[videoID+"/"+filename]
	return ok
}

// fakeDispatcher ghi lại mọi job đã enqueue
type fakeDispatcher struct {
	jobs       []queue.JobKind
	payloads   []interface{}
	enqueueErr error
}

func (f *fakeDispatcher) Enqueue(_ context.Context, kind queue.JobKind, payload interface{}) error {
	if f.enqueueErr != nil {
		return f.enqueueErr
	}
	f.jobs = append(f.jobs, kind)
	f.payloads = append(f.payloads, payload)
	return nil
}

// fixedKeygen luôn trả về cùng một key
type fixedKeygen struct {
	key string
}

func (f *fixedKeygen) Generate(_ context.Context, _, _ string) (string, error) {
	return f.key, nil
}

func validUploadRequest() *UploadRequest {
	return &UploadRequest{
		Name:     "Chuyến đi Đà Lạt",
		OwnerID:  "user-1",
		Filename: "clip.mp4",
		Data:     []byte("fake video bytes"),
	}
}

func TestIngest_UnsupportedExtension_KhongTaoRecordHayFile(t *testing.T) {
	store := newFakeVideoStore()
	media := newFakeMediaSaver()
	dispatcher := &fakeDispatcher{}
	svc := NewIngestService(store, media, dispatcher, &fixedKeygen{key: "abc123"}, []string{"360", "720", "1080"})

	req := validUploadRequest()
	req.Filename = "clip.mov"

	_, err := svc.Ingest(context.Background(), req)
	if !errors.Is(err, common.ErrUnsupportedMedia) {
		t.Fatalf("extension .mov phải bị từ chối với ErrUnsupportedMedia, nhận: %v", err)
	}
	if len(store.records) != 0 {
		t.Error("upload bị từ chối không được tạo record")
	}
	if len(media.files) != 0 {
		t.Error("upload bị từ chối không được ghi file")
	}
	if len(dispatcher.jobs) != 0 {
		t.Error("upload bị từ chối không được enqueue job")
	}
}

func TestIngest_ThieuTruongBatBuoc(t *testing.T) {
	svc := NewIngestService(newFakeVideoStore(), newFakeMediaSaver(), &fakeDispatcher{}, &fixedKeygen{key: "abc123"}, []string{"360"})

	cases := []struct {
		name   string
		mutate func(*UploadRequest)
	}{
		{"thiếu name", func(r *UploadRequest) { r.Name = "" }},
		{"thiếu filename", func(r *UploadRequest) { r.Filename = "" }},
		{"data rỗng", func(r *UploadRequest) { r.Data = nil }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validUploadRequest()
			tc.mutate(req)
			_, err := svc.Ingest(context.Background(), req)
			if !errors.Is(err, common.ErrRequiredField) {
				t.Errorf("phải trả ErrRequiredField, nhận: %v", err)
			}
		})
	}
}

func TestIngest_UploadThanhCong_FanOutDuJobs(t *testing.T) {
	store := newFakeVideoStore()
	media := newFakeMediaSaver()
	dispatcher := &fakeDispatcher{}
	resolutions := []string{"360", "720", "1080"}
	svc := NewIngestService(store, media, dispatcher, &fixedKeygen{key: "abc123"}, resolutions)

	result, err := svc.Ingest(context.Background(), validUploadRequest())
	if err != nil {
		t.Fatalf("upload hợp lệ phải thành công, nhận: %v", err)
	}
	if result.VideoID != "abc123" {
		t.Errorf("videoId phải là key đã cấp, nhận: %s", result.VideoID)
	}

	record, ok := store.records["abc123"]
	if !ok {
		t.Fatal("record phải được persist với videoId đã cấp")
	}
	if len(record.Resolutions) != 0 {
		t.Error("record mới phải có resolutions rỗng, tất cả đều pending")
	}
	if len(record.Likes) != 0 || len(record.Comments) != 0 {
		t.Error("record mới phải có likes và comments rỗng")
	}
	if record.SourceMD5 == "" {
		t.Error("record phải ghi checksum md5 của nội dung")
	}

	updated, _ := store.GetByID(context.Background(), "abc123")
	if !updated.MediaStored {
		t.Error("mediaStored phải được đánh dấu true sau khi lưu media thành công")
	}

	// Đúng một convert job cho mỗi resolution đích
	if len(dispatcher.jobs) != len(resolutions) {
		t.Fatalf("phải enqueue %d convert jobs, nhận: %d", len(resolutions), len(dispatcher.jobs))
	}
	seen := map[string]bool{}
	for i, kind := range dispatcher.jobs {
		if kind != queue.JobConvert {
			t.Errorf("job kind phải là convert, nhận: %s", kind)
		}
		payload := dispatcher.payloads[i].(queue.ConvertPayload)
		if payload.VideoID != "abc123" {
			t.Errorf("payload phải mang videoId đã cấp, nhận: %s", payload.VideoID)
		}
		seen[payload.Resolution] = true
	}
	for _, r := range resolutions {
		if !seen[r] {
			t.Errorf("thiếu convert job cho resolution %s", r)
		}
	}
}

func TestIngest_LuuMediaThatBai_TraRetryID(t *testing.T) {
	store := newFakeVideoStore()
	media := newFakeMediaSaver()
	media.saveErr = errors.New("disk full")
	dispatcher := &fakeDispatcher{}
	svc := NewIngestService(store, media, dispatcher, &fixedKeygen{key: "abc123"}, []string{"360"})

	_, err := svc.Ingest(context.Background(), validUploadRequest())
	if err == nil {
		t.Fatal("lưu media thất bại phải trả lỗi")
	}

	var customErr *common.Error
	if !errors.As(err, &customErr) {
		t.Fatalf("lỗi phải là *common.Error, nhận: %T", err)
	}
	if customErr.Code != common.ErrCodeMediaStorage {
		t.Errorf("lỗi phải thuộc loại media storage, nhận: %s", customErr.Code.Code)
	}
	details, ok := customErr.Details.(map[string]string)
	if !ok || details["retryId"] != "abc123" {
		t.Errorf("lỗi phải mang retryId của record đã persist, nhận details: %v", customErr.Details)
	}

	// Record vẫn tồn tại với mediaStored=false - retry đi qua chính videoId này
	record, ok := store.records["abc123"]
	if !ok {
		t.Fatal("record metadata phải được giữ lại sau partial failure")
	}
	if record.MediaStored {
		t.Error("mediaStored phải là false sau partial failure")
	}
	if len(dispatcher.jobs) != 0 {
		t.Error("không được enqueue convert job khi media chưa lưu được")
	}
}

func TestIngest_RetryVoiRetryID_KhongCapKeyMoi(t *testing.T) {
	store := newFakeVideoStore()
	media := newFakeMediaSaver()
	dispatcher := &fakeDispatcher{}
	svc := NewIngestService(store, media, dispatcher, &fixedKeygen{key: "xyz789"}, []string{"360", "720"})

	// Record từ lần upload partial-failure trước đó
	store.records["abc123"] = models.Video{
		VideoID:        "abc123",
		Name:           "Chuyến đi Đà Lạt",
		OwnerID:        "user-1",
		SourceFilename: "Chuyn_i__Lt.mp4",
		MediaStored:    false,
	}

	req := validUploadRequest()
	req.RetryID = "abc123"

	result, err := svc.Ingest(context.Background(), req)
	if err != nil {
		t.Fatalf("retry hợp lệ phải thành công, nhận: %v", err)
	}
	if result.VideoID != "abc123" {
		t.Errorf("retry phải tái sử dụng videoId cũ, nhận: %s", result.VideoID)
	}
	if _, ok := store.records["xyz789"]; ok {
		t.Error("retry không được cấp key mới hay tạo record mồ côi")
	}
	if !store.records["abc123"].MediaStored {
		t.Error("retry thành công phải đánh dấu mediaStored")
	}
	if len(dispatcher.jobs) != 2 {
		t.Errorf("retry thành công phải fan-out đủ convert jobs, nhận: %d", len(dispatcher.jobs))
	}
}

func TestIngest_RetryKhiMediaDaLuu_LaNoOp(t *testing.T) {
	store := newFakeVideoStore()
	media := newFakeMediaSaver()
	dispatcher := &fakeDispatcher{}
	svc := NewIngestService(store, media, dispatcher, &fixedKeygen{key: "xyz789"}, []string{"360"})

	store.records["abc123"] = models.Video{
		VideoID:     "abc123",
		Name:        "Chuyến đi Đà Lạt",
		OwnerID:     "user-1",
		MediaStored: true,
	}

	req := validUploadRequest()
	req.RetryID = "abc123"

	result, err := svc.Ingest(context.Background(), req)
	if err != nil {
		t.Fatalf("retry trên record đã hoàn tất phải là no-op thành công, nhận: %v", err)
	}
	if result.VideoID != "abc123" {
		t.Errorf("no-op retry vẫn phải trả videoId cũ, nhận: %s", result.VideoID)
	}
	if len(media.files) != 0 {
		t.Error("no-op retry không được ghi lại file")
	}
	if len(dispatcher.jobs) != 0 {
		t.Error("no-op retry không được enqueue thêm job")
	}
}

func TestIngest_RetryCuaNguoiKhac_BiTuChoi(t *testing.T) {
	store := newFakeVideoStore()
	media := newFakeMediaSaver()
	dispatcher := &fakeDispatcher{}
	svc := NewIngestService(store, media, dispatcher, &fixedKeygen{key: "xyz789"}, []string{"360"})

	store.records["abc123"] = models.Video{
		VideoID:        "abc123",
		Name:           "Chuyến đi Đà Lạt",
		OwnerID:        "user-1",
		SourceFilename: "Chuyn_i__Lt.mp4",
		MediaStored:    false,
	}

	req := validUploadRequest()
	req.OwnerID = "user-2"
	req.RetryID = "abc123"

	_, err := svc.Ingest(context.Background(), req)
	if !errors.Is(err, common.ErrForbidden) {
		t.Fatalf("retry từ owner khác phải bị từ chối với ErrForbidden, nhận: %v", err)
	}
	if len(media.files) != 0 {
		t.Error("retry bị từ chối không được ghi đè media")
	}
	if store.records["abc123"].MediaStored {
		t.Error("retry bị từ chối không được thay đổi trạng thái record")
	}
	if len(dispatcher.jobs) != 0 {
		t.Error("retry bị từ chối không được enqueue job")
	}
}

func TestIngest_RetryNoiDungKhac_TinhLaiChecksum(t *testing.T) {
	store := newFakeVideoStore()
	media := newFakeMediaSaver()
	svc := NewIngestService(store, media, &fakeDispatcher{}, &fixedKeygen{key: "xyz789"}, []string{"360"})

	// Record từ lần upload đầu, checksum mô tả bytes cũ chưa bao giờ lưu được
	store.records["abc123"] = models.Video{
		VideoID:        "abc123",
		Name:           "Chuyến đi Đà Lạt",
		OwnerID:        "user-1",
		SourceFilename: "Chuyn_i__Lt.mp4",
		SourceMD5:      "0f343b0931126a20f133d67c2b018a3b",
		MediaStored:    false,
	}

	req := validUploadRequest()
	req.RetryID = "abc123"
	req.Data = []byte("nội dung khác lần đầu")

	if _, err := svc.Ingest(context.Background(), req); err != nil {
		t.Fatalf("retry hợp lệ phải thành công, nhận: %v", err)
	}

	sum := md5.Sum(req.Data)
	want := hex.EncodeToString(sum[:])
	if got := store.records["abc123"].SourceMD5; got != want {
		t.Errorf("sourceMd5 phải mô tả bytes thực sự đã lưu, muốn %s nhận %s", want, got)
	}
}

func TestIngest_RetryIDKhongTonTai(t *testing.T) {
	svc := NewIngestService(newFakeVideoStore(), newFakeMediaSaver(), &fakeDispatcher{}, &fixedKeygen{key: "xyz789"}, []string{"360"})

	req := validUploadRequest()
	req.RetryID = "noexist"

	_, err := svc.Ingest(context.Background(), req)
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("retry với videoId không tồn tại phải trả ErrNotFound, nhận: %v", err)
	}
}

func TestIngest_EnqueueLoi_KhongRollbackUpload(t *testing.T) {
	store := newFakeVideoStore()
	media := newFakeMediaSaver()
	dispatcher := &fakeDispatcher{enqueueErr: common.ErrQueueUnavailable}
	svc := NewIngestService(store, media, dispatcher, &fixedKeygen{key: "abc123"}, []string{"360"})

	result, err := svc.Ingest(context.Background(), validUploadRequest())
	if err != nil {
		t.Fatalf("enqueue lỗi không được fail upload, nhận: %v", err)
	}
	if result.VideoID != "abc123" {
		t.Errorf("upload vẫn phải trả kết quả bình thường, nhận: %s", result.VideoID)
	}
	if !store.records["abc123"].MediaStored {
		t.Error("record và media đã lưu phải được giữ nguyên khi enqueue lỗi")
	}
}
