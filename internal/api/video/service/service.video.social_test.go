// Package videosvc - Test reconciler social: idempotence của like/unlike, append comment.
package videosvc

import (
	"context"
	"errors"
	"testing"

	"vid_share/internal/api/video/models"
	"vid_share/internal/common"
	"vid_share/internal/queue"
)

func seedVideo(store *fakeVideoStore, videoID string) {
	store.records[videoID] = models.Video{
		VideoID: videoID,
		Name:    "Video test",
		Likes:   []string{},
	}
}

func TestApplyLike_LanDauThemVaoSet(t *testing.T) {
	store := newFakeVideoStore()
	seedVideo(store, "abc123")
	svc := NewSocialService(store, &fakeDispatcher{}, false)

	updated, err := svc.ApplyLike(context.Background(), "abc123", "user-1", true)
	if err != nil {
		t.Fatalf("like hợp lệ phải thành công, nhận: %v", err)
	}
	if !hasLike(&updated, "user-1") {
		t.Error("user-1 phải có trong set likes sau khi like")
	}
	if len(updated.Likes) != 1 {
		t.Errorf("set likes phải có đúng 1 phần tử, nhận: %d", len(updated.Likes))
	}
}

func TestApplyLike_LapLaiLaNoOp(t *testing.T) {
	store := newFakeVideoStore()
	seedVideo(store, "abc123")
	dispatcher := &fakeDispatcher{}
	svc := NewSocialService(store, dispatcher, true)

	for i := 0; i < 3; i++ {
		updated, err := svc.ApplyLike(context.Background(), "abc123", "user-1", true)
		if err != nil {
			t.Fatalf("like lặp lại phải luôn thành công, lần %d nhận: %v", i+1, err)
		}
		if len(updated.Likes) != 1 {
			t.Errorf("like lặp lại không được nhân bản phần tử, lần %d có %d likes", i+1, len(updated.Likes))
		}
	}

	// Chỉ lần chuyển state đầu tiên phát sinh notification
	if len(dispatcher.jobs) != 1 {
		t.Errorf("call trùng không được phát sinh message trùng, nhận %d jobs", len(dispatcher.jobs))
	}
}

func TestApplyLike_UnlikeLaNghichDao(t *testing.T) {
	store := newFakeVideoStore()
	seedVideo(store, "abc123")
	svc := NewSocialService(store, &fakeDispatcher{}, false)

	if _, err := svc.ApplyLike(context.Background(), "abc123", "user-1", true); err != nil {
		t.Fatal(err)
	}
	updated, err := svc.ApplyLike(context.Background(), "abc123", "user-1", false)
	if err != nil {
		t.Fatalf("unlike phải thành công, nhận: %v", err)
	}
	if hasLike(&updated, "user-1") {
		t.Error("user-1 không được còn trong set likes sau unlike")
	}

	// Unlike khi chưa từng like cũng là no-op thành công
	updated, err = svc.ApplyLike(context.Background(), "abc123", "user-2", false)
	if err != nil {
		t.Fatalf("unlike của user chưa like phải là no-op, nhận: %v", err)
	}
	if len(updated.Likes) != 0 {
		t.Errorf("set likes phải rỗng, nhận: %d", len(updated.Likes))
	}
}

func TestApplyLike_VideoKhongTonTai_KhongDispatch(t *testing.T) {
	store := newFakeVideoStore()
	dispatcher := &fakeDispatcher{}
	svc := NewSocialService(store, dispatcher, true)

	_, err := svc.ApplyLike(context.Background(), "noexist", "user-1", true)
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("video không tồn tại phải trả ErrNotFound, nhận: %v", err)
	}
	if len(dispatcher.jobs) != 0 {
		t.Error("short-circuit không được enqueue job nào")
	}
}

func TestApplyLike_NotifyMangDungTrangThai(t *testing.T) {
	store := newFakeVideoStore()
	seedVideo(store, "abc123")
	dispatcher := &fakeDispatcher{}
	svc := NewSocialService(store, dispatcher, true)

	if _, err := svc.ApplyLike(context.Background(), "abc123", "user-1", true); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ApplyLike(context.Background(), "abc123", "user-1", false); err != nil {
		t.Fatal(err)
	}

	if len(dispatcher.jobs) != 2 {
		t.Fatalf("hai lần chuyển state phải phát sinh 2 notification, nhận: %d", len(dispatcher.jobs))
	}
	first := dispatcher.payloads[0].(queue.LikePayload)
	second := dispatcher.payloads[1].(queue.LikePayload)
	if !first.Liked || second.Liked {
		t.Error("payload phải mang trạng thái mới, không phải toggle")
	}
}

func TestApplyLike_NotifyLoi_KhongFailRequest(t *testing.T) {
	store := newFakeVideoStore()
	seedVideo(store, "abc123")
	dispatcher := &fakeDispatcher{enqueueErr: common.ErrQueueUnavailable}
	svc := NewSocialService(store, dispatcher, true)

	updated, err := svc.ApplyLike(context.Background(), "abc123", "user-1", true)
	if err != nil {
		t.Fatalf("notification lỗi không được fail request, nhận: %v", err)
	}
	if !hasLike(&updated, "user-1") {
		t.Error("state vẫn phải được áp dù notification lỗi")
	}
}

func TestAddComment_AppendTheoThuTu(t *testing.T) {
	store := newFakeVideoStore()
	seedVideo(store, "abc123")
	svc := NewSocialService(store, &fakeDispatcher{}, false)

	if _, err := svc.AddComment(context.Background(), "abc123", "user-1", "hay quá"); err != nil {
		t.Fatal(err)
	}
	updated, err := svc.AddComment(context.Background(), "abc123", "user-2", "đồng ý")
	if err != nil {
		t.Fatalf("comment hợp lệ phải thành công, nhận: %v", err)
	}

	if len(updated.Comments) != 2 {
		t.Fatalf("phải có 2 comments theo thứ tự append, nhận: %d", len(updated.Comments))
	}
	if updated.Comments[0].AuthorID != "user-1" || updated.Comments[1].AuthorID != "user-2" {
		t.Error("comments phải giữ thứ tự append-only")
	}
	if updated.Comments[0].Timestamp == 0 {
		t.Error("comment phải được gắn timestamp")
	}
}

func TestAddComment_VideoKhongTonTai(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	svc := NewSocialService(newFakeVideoStore(), dispatcher, true)

	_, err := svc.AddComment(context.Background(), "noexist", "user-1", "text")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("comment lên video không tồn tại phải trả ErrNotFound, nhận: %v", err)
	}
	if len(dispatcher.jobs) != 0 {
		t.Error("short-circuit không được enqueue job nào")
	}
}
