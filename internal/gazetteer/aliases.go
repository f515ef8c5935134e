package gazetteer

// ProvinceAliases returns the colloquial short name → canonical name table
// for every province-level unit: provinces, autonomous regions, direct
// municipalities and special administrative regions. The table is fixed at
// build time; callers receive a fresh copy they may not share.
func ProvinceAliases() map[string]string {
	return map[string]string{
		// provinces
		"广东":  "广东省",
		"江苏":  "江苏省",
		"浙江":  "浙江省",
		"山东":  "山东省",
		"河南":  "河南省",
		"河北":  "河北省",
		"四川":  "四川省",
		"湖北":  "湖北省",
		"湖南":  "湖南省",
		"福建":  "福建省",
		"安徽":  "安徽省",
		"江西":  "江西省",
		"陕西":  "陕西省",
		"山西":  "山西省",
		"辽宁":  "辽宁省",
		"吉林":  "吉林省",
		"黑龙江": "黑龙江省",
		"云南":  "云南省",
		"贵州":  "贵州省",
		"甘肃":  "甘肃省",
		"海南":  "海南省",
		"青海":  "青海省",
		"台湾":  "台湾省",

		// autonomous regions
		"广西":  "广西壮族自治区",
		"内蒙古": "内蒙古自治区",
		"西藏":  "西藏自治区",
		"新疆":  "新疆维吾尔自治区",
		"宁夏":  "宁夏回族自治区",

		// municipalities
		"北京": "北京市",
		"上海": "上海市",
		"天津": "天津市",
		"重庆": "重庆市",

		// special administrative regions
		"香港": "香港特别行政区",
		"澳门": "澳门特别行政区",
	}
}
