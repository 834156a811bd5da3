package utils

import (
	"math/rand"
	"strings"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/timesheet-reminder/backend/internal/domain"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var digits = "0123456789"

// GenerateHandleFromChineseName 用姓名的拼音前缀加几位数字生成邮箱前缀
func GenerateHandleFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	handle := ""

	for _, py := range pinyinArray {
		length := rand.Intn(len(py)) + 1
		handle += py[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		handle += string(digits[rand.Intn(len(digits))])
	}

	return handle
}

var idCharacters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateRandomSlackID 生成形如 U0123ABCDEF 的成员 id
func GenerateRandomSlackID() string {
	var sb strings.Builder
	sb.WriteByte('U')
	for i := 0; i < 10; i++ {
		sb.WriteByte(idCharacters[rand.Intn(len(idCharacters))])
	}
	return sb.String()
}

func GenerateRandomIdentity(emailDomainName string) domain.Identity {
	name := GenerateRandomChineseName()

	return domain.Identity{
		ID:             GenerateRandomSlackID(),
		DisplayName:    name,
		ContactAddress: GenerateHandleFromChineseName(name) + "@" + emailDomainName,
	}
}
